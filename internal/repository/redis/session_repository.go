package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hortifood/domain"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionData is what the allow-list remembers about the current access
// token of a subject.
type SessionData struct {
	SubjectID   string    `json:"subject_id"`
	AccountType string    `json:"account_type"`
	Role        string    `json:"role"`
	TokenHash   string    `json:"token_hash"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

var ErrSessionNotFound = errors.New("session not found or expired")

// SessionRepository keeps one live access token per subject. Storing a new
// session drops the previous token's lookup key.
type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{
		client: client,
	}
}

func subjectKey(subjectID string) string {
	return fmt.Sprintf("session:subject:%s", subjectID)
}

func lookupKey(tokenHash string) string {
	return fmt.Sprintf("session:lookup:%s", tokenHash)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

const maxStoreRetries = 10

// StoreSession replaces the subject's live session. The subject key is
// watched so concurrent logins cannot both keep a valid lookup key.
func (r *SessionRepository) StoreSession(ctx context.Context, token string, data SessionData) error {
	ttl := time.Until(data.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	data.TokenHash = hashToken(token)

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	key := subjectKey(data.SubjectID)
	store := func(tx *redis.Tx) error {
		previous, err := decodeSession(tx.Get(ctx, key))
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if previous != nil {
				pipe.Del(ctx, lookupKey(previous.TokenHash))
			}
			pipe.Set(ctx, key, jsonData, ttl)
			pipe.Set(ctx, lookupKey(data.TokenHash), data.SubjectID, ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxStoreRetries; i++ {
		err = r.client.Watch(ctx, store, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to store session in Redis: %w", err)
	}

	return nil
}

func decodeSession(cmd *redis.StringCmd) (*SessionData, error) {
	val, err := cmd.Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var data SessionData
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	return &data, nil
}

// GetSessionData retrieves the live session of a subject.
func (r *SessionRepository) GetSessionData(ctx context.Context, subjectID string) (*SessionData, error) {
	return decodeSession(r.client.Get(ctx, subjectKey(subjectID)))
}

// ValidateTokenFromRedis returns the subject the token was issued to.
func (r *SessionRepository) ValidateTokenFromRedis(ctx context.Context, token string) (string, error) {
	subjectID, err := r.client.Get(ctx, lookupKey(hashToken(token))).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("failed to validate token: %w", err)
	}

	return subjectID, nil
}

func (r *SessionRepository) RevokeSessions(ctx context.Context, subjectID string) error {
	previous, err := r.GetSessionData(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}

	if err := r.client.Del(ctx, subjectKey(subjectID), lookupKey(previous.TokenHash)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

// StartSession records token as the only live access token of principal.
func (r *SessionRepository) StartSession(ctx context.Context, principal domain.Principal, token string, expiresAt time.Time) error {
	return r.StoreSession(ctx, token, SessionData{
		SubjectID:   principal.SubjectID.String(),
		AccountType: principal.AccountType,
		Role:        principal.Role,
		IssuedAt:    time.Now(),
		ExpiresAt:   expiresAt,
	})
}

func (r *SessionRepository) EndSessions(ctx context.Context, subjectID uuid.UUID) error {
	return r.RevokeSessions(ctx, subjectID.String())
}
