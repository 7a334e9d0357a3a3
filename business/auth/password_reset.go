package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hortifood/domain"
	"hortifood/pkg/logger"
	"hortifood/pkg/utils"
	"strconv"
	"strings"
	"time"

	"github.com/pobyzaarif/goshortcute"
)

const resetCodeTTL = 30 // minutes

const (
	SubjectResetPassword   = "Reset your HortiFood password"
	EmailBodyResetPassword = `Hi %v,<br><br>
We received a request to reset your password. Use the link below within %v minutes:<br>
<a href="%v">Reset password</a><br><br>
If you did not request this, you can ignore this email.`
)

var errInvalidResetCode = domain.BadRequestError("invalid or expired code")

// RequestPasswordReset mails a reset code when the account exists. Unknown
// accounts are answered the same way so the endpoint does not leak emails.
func (s *authService) RequestPasswordReset(ctx context.Context, email, accountType string) error {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when request password reset")
		return fmt.Errorf("context error: %w", err)
	}

	if !domain.ValidAccountType(accountType) {
		return domain.BadRequestError("invalid account type")
	}

	account, currentHash, err := s.account(ctx, normalizeEmail(email), accountType)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Info("password reset for unknown account", "account_type", accountType)
			return nil
		}
		logger.Error("failed to find account", err)
		return err
	}

	code, err := s.resetCode(account.Email, accountType, currentHash)
	if err != nil {
		logger.Error("failed to build reset code", err)
		return err
	}

	resetLink := s.cfg.AppDeploymentUrl + "/reset-password?code=" + code

	err = s.notifRepo.SendEmail(account.Name, account.Email, SubjectResetPassword, fmt.Sprintf(EmailBodyResetPassword, account.Name, resetCodeTTL, resetLink))
	if err != nil {
		logger.Warn("Failed to send reset password email", err)
	}

	return nil
}

// passwordFingerprint ties a reset code to the password it replaces, so the
// code stops working once any reset has gone through.
func passwordFingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:])[:16]
}

func (s *authService) resetCode(email, accountType, passwordHash string) (string, error) {
	if s.cfg.ResetPasswordKey == "" {
		return "", errors.New("reset password key is not configured")
	}

	expAt := s.now().Add(resetCodeTTL * time.Minute).Unix()
	plain := fmt.Sprintf("%v|%v|%v|%v", email, accountType, expAt, passwordFingerprint(passwordHash))

	encrypted, err := goshortcute.AESCBCEncrypt([]byte(plain), []byte(s.cfg.ResetPasswordKey))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt reset code: %w", err)
	}

	return goshortcute.StringtoBase64Encode(encrypted), nil
}

// ResetPassword sets a new password from a mailed code and logs the account
// out everywhere.
func (s *authService) ResetPassword(ctx context.Context, code, password string) error {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when reset password")
		return fmt.Errorf("context error: %w", err)
	}

	if len(password) < MinPasswordLength {
		return domain.BadRequestError("password must be at least 6 characters")
	}

	if s.cfg.ResetPasswordKey == "" {
		logger.Error("reset password key is not configured")
		return errInvalidResetCode
	}

	decoded := goshortcute.StringtoBase64Decode(code)
	plain, err := goshortcute.AESCBCDecrypt([]byte(decoded), []byte(s.cfg.ResetPasswordKey))
	if err != nil {
		logger.Warn("reset code decrypt failed", err)
		return errInvalidResetCode
	}

	parts := strings.Split(plain, "|")
	if len(parts) != 4 {
		return errInvalidResetCode
	}

	email, accountType := parts[0], parts[1]

	ts, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return errInvalidResetCode
	}
	if s.now().After(time.Unix(ts, 0)) {
		return errInvalidResetCode
	}

	account, currentHash, err := s.account(ctx, email, accountType)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrBadRequest) {
			return errInvalidResetCode
		}
		logger.Error("failed to find account", err)
		return err
	}
	if passwordFingerprint(currentHash) != parts[3] {
		return errInvalidResetCode
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if accountType == domain.AccountTypeHortifruit {
		err = s.hortifruitRepo.UpdatePassword(ctx, account.ID, string(passwordHash))
	} else {
		err = s.userRepo.UpdatePassword(ctx, account.ID, string(passwordHash))
	}
	if err != nil {
		logger.Error("failed to update password", err)
		return err
	}

	principal := domain.Principal{SubjectID: account.ID, AccountType: accountType}
	if err := s.Logout(ctx, principal); err != nil {
		return err
	}

	logger.Info("password reset", "subject_id", account.ID.String())

	return nil
}
