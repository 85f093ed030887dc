// SendGrid v3 mail client
//
// Request shape based on https://docs.sendgrid.com/api-reference/mail-send
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/shared"
	"golang.org/x/oauth2"
)

const defaultSendGridBaseURL = "https://api.sendgrid.com"

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridMessage struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

// SendGridService delivers mail through the SendGrid v3 API. The API key is
// carried as a bearer token by an [oauth2] static token source.
type SendGridService struct {
	baseURL string
	tokens  oauth2.TokenSource
}

// NewSendGridService creates a mail client. baseURL overrides the production
// endpoint and should be "" outside tests.
func NewSendGridService(apiKey, baseURL string) (*SendGridService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: sendgrid api key", shared.ErrMissingCredentials)
	}

	if baseURL == "" {
		baseURL = defaultSendGridBaseURL
	}

	return &SendGridService{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tokens:  oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey}),
	}, nil
}

// Send delivers one HTML mail. SendGrid acknowledges queued mail with 202.
func (s *SendGridService) Send(ctx context.Context, mail *models.Mail) error {
	message := sendGridMessage{
		Personalizations: []sendGridPersonalization{{To: []sendGridAddress{{Email: mail.ToEmail}}}},
		From:             sendGridAddress{Email: mail.FromEmail},
		Subject:          mail.Subject,
		Content:          []sendGridContent{{Type: "text/html", Value: mail.HTMLContent}},
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%w: encoding mail: %v", shared.ErrAPIRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v3/mail/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", shared.ErrAPIRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := oauth2.NewClient(ctx, s.tokens)
	client.Timeout = defaultTimeoutSeconds * time.Second

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}
