package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/shared"
)

func TestSendGridService(t *testing.T) {
	mail := &models.Mail{
		FromEmail:   "digest@example.com",
		ToEmail:     "reader@example.com",
		Subject:     "Recall Daily Digest",
		HTMLContent: "<p>hello</p>",
	}

	t.Run("Missing API Key", func(t *testing.T) {
		_, err := NewSendGridService("", "")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Send", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v3/mail/send" {
				t.Errorf("expected path /v3/mail/send, got %s", r.URL.Path)
			}
			if r.Method != http.MethodPost {
				t.Errorf("expected POST method, got %s", r.Method)
			}
			if r.Header.Get("Authorization") != "Bearer sg_key" {
				t.Errorf("expected bearer auth, got %s", r.Header.Get("Authorization"))
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("expected JSON content type, got %s", r.Header.Get("Content-Type"))
			}

			var message sendGridMessage
			if err := json.NewDecoder(r.Body).Decode(&message); err != nil {
				t.Errorf("expected JSON body: %v", err)
				return
			}
			if message.From.Email != "digest@example.com" {
				t.Errorf("expected from address, got %s", message.From.Email)
			}
			if len(message.Personalizations) != 1 || message.Personalizations[0].To[0].Email != "reader@example.com" {
				t.Errorf("expected to address, got %#v", message.Personalizations)
			}
			if message.Subject != "Recall Daily Digest" {
				t.Errorf("expected subject, got %s", message.Subject)
			}
			if len(message.Content) != 1 || message.Content[0].Type != "text/html" {
				t.Errorf("expected html content, got %#v", message.Content)
			}

			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		svc, err := NewSendGridService("sg_key", server.URL)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if err := svc.Send(context.Background(), mail); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Rejected Key", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		svc, err := NewSendGridService("bad_key", server.URL)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if err := svc.Send(context.Background(), mail); !errors.Is(err, shared.ErrRemoteAuth) {
			t.Errorf("expected ErrRemoteAuth, got %v", err)
		}
	})
}
