package notification

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"hortifood/pkg/logger"
	"io"
	"net/http"
	"time"

	"github.com/pobyzaarif/goshortcute"
	"github.com/sony/gobreaker"
)

type MailjetConfig struct {
	MailjetBaseURL           string
	MailjetBasicAuthUsername string
	MailjetBasicAuthPassword string
	MailjetSenderEmail       string
	MailjetSenderName        string
}

var ErrMailerNotConfigured = errors.New("mailer is not configured")

// MailjetRepository sends transactional email through the Mailjet v3.1 API.
// Calls go through a circuit breaker so a failing mailer is not hammered.
type MailjetRepository struct {
	mailjetConfig MailjetConfig
	client        *http.Client
	breaker       *gobreaker.CircuitBreaker
}

func NewMailjetRepository(cfg MailjetConfig) *MailjetRepository {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mailjet",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &MailjetRepository{
		mailjetConfig: cfg,
		client:        &http.Client{Timeout: 5 * time.Second},
		breaker:       breaker,
	}
}

type payloadSendEmail struct {
	Messages []Messages `json:"Messages"`
}

type From struct {
	Email string `json:"Email"`
	Name  string `json:"Name"`
}

type To struct {
	Email string `json:"Email"`
	Name  string `json:"Name"`
}

type Messages struct {
	From     From   `json:"From"`
	To       []To   `json:"To"`
	Subject  string `json:"Subject"`
	TextPart string `json:"TextPart"`
	HTMLPart string `json:"HTMLPart"`
}

func (r *MailjetRepository) SendEmail(toName, toEmail, subject, message string) error {
	if r.mailjetConfig.MailjetBaseURL == "" {
		return ErrMailerNotConfigured
	}

	_, err := r.breaker.Execute(func() (interface{}, error) {
		return nil, r.send(toName, toEmail, subject, message)
	})
	return err
}

func (r *MailjetRepository) send(toName, toEmail, subject, message string) error {
	payload := payloadSendEmail{
		Messages: []Messages{
			{
				From: From{
					Email: r.mailjetConfig.MailjetSenderEmail,
					Name:  r.mailjetConfig.MailjetSenderName,
				},
				To: []To{
					{Email: toEmail, Name: toName},
				},
				Subject:  subject,
				TextPart: message,
				HTMLPart: message,
			},
		},
	}

	payloadByte, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal json payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, r.mailjetConfig.MailjetBaseURL+"/v3.1/send", bytes.NewReader(payloadByte))
	if err != nil {
		return err
	}

	buildBasicAuth := goshortcute.StringtoBase64Encode(r.mailjetConfig.MailjetBasicAuthUsername + ":" + r.mailjetConfig.MailjetBasicAuthPassword)
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", "Basic "+buildBasicAuth)

	res, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode <= 299 {
		return nil
	}

	bodyBytes, _ := io.ReadAll(res.Body)
	logger.Warn("mailjet rejected message", "status", res.StatusCode, "body", string(bodyBytes))

	return fmt.Errorf("mailer service return negative response %v", res.StatusCode)
}
