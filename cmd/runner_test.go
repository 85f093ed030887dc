package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/recall/internal/repositories"
	"github.com/desertthunder/recall/internal/services"
	"github.com/desertthunder/recall/internal/shared"
	tu "github.com/desertthunder/recall/internal/testing"
)

// setupTestStore opens a migrated single-connection in-memory store.
func setupTestStore(t *testing.T) *repositories.Store {
	t.Helper()

	store, err := repositories.Open(":memory:", 1, 1)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}

	return store
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			store := setupTestStore(t)
			defer store.Close()

			pocket, err := services.NewPocketService("consumer-key", "http://localhost:8090/callback", "")
			if err != nil {
				t.Fatalf("failed to create pocket service: %v", err)
			}
			mailer, err := services.NewSendGridService("sg-key", "")
			if err != nil {
				t.Fatalf("failed to create sendgrid service: %v", err)
			}
			trends := services.NewTrendsService("")
			hackernews := services.NewHackerNewsService("")
			wayback := services.NewWaybackService("")

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Store:      store,
				Pocket:     pocket,
				Trends:     trends,
				Mailer:     mailer,
				HackerNews: hackernews,
				Wayback:    wayback,
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.store != store {
				t.Error("expected store to be set")
			}
			if runner.pocket != pocket {
				t.Error("expected pocket to be set")
			}
			if runner.trends != trends {
				t.Error("expected trends to be set")
			}
			if runner.mailer != mailer {
				t.Error("expected mailer to be set")
			}
			if runner.hackernews != hackernews {
				t.Error("expected hackernews to be set")
			}
			if runner.wayback != wayback {
				t.Error("expected wayback to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/test/path/config.toml",
			})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil store leaves field unset", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Store: nil,
			})

			if runner.store != nil {
				t.Error("expected store to stay nil")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writes plain text without formatting", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("simple text")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "simple text" {
				t.Errorf("expected 'simple text', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("withStore", func(t *testing.T) {
		t.Run("reuses an injected store", func(t *testing.T) {
			store := setupTestStore(t)
			defer store.Close()

			runner := NewRunner(RunnerOpts{Store: store})

			var got *repositories.Store
			if err := runner.withStore(func(s *repositories.Store) error {
				got = s
				return nil
			}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != store {
				t.Error("expected the injected store to be passed through")
			}

			// the injected store stays open for the next command
			if err := runner.withStore(func(s *repositories.Store) error {
				_, err := s.Users.List(context.Background())
				return err
			}); err != nil {
				t.Errorf("expected injected store to stay open, got %v", err)
			}
		})

		t.Run("opens from config when none injected", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Database.URL = filepath.Join(t.TempDir(), "recall.db")

			runner := NewRunner(RunnerOpts{Config: config})

			ran := false
			if err := runner.withStore(func(s *repositories.Store) error {
				ran = true
				_, err := s.Users.List(context.Background())
				return err
			}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !ran {
				t.Error("expected fn to run against the opened store")
			}
		})

		t.Run("propagates fn errors", func(t *testing.T) {
			store := setupTestStore(t)
			defer store.Close()

			runner := NewRunner(RunnerOpts{Store: store})

			wantErr := errors.New("boom")
			if err := runner.withStore(func(*repositories.Store) error {
				return wantErr
			}); !errors.Is(err, wantErr) {
				t.Errorf("expected fn error, got %v", err)
			}
		})
	})

	t.Run("newEngine", func(t *testing.T) {
		store := setupTestStore(t)
		defer store.Close()

		runner := NewRunner(RunnerOpts{Store: store})

		if runner.newEngine(store) == nil {
			t.Error("expected an engine")
		}
	})

	t.Run("collections", func(t *testing.T) {
		t.Run("binds the token to a pocket client", func(t *testing.T) {
			pocket, err := services.NewPocketService("consumer-key", "http://localhost:8090/callback", "")
			if err != nil {
				t.Fatalf("failed to create pocket service: %v", err)
			}

			runner := NewRunner(RunnerOpts{Pocket: pocket})

			collection, err := runner.collections()("access-token")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if collection == nil {
				t.Error("expected a collection")
			}
		})

		t.Run("rejects an empty token", func(t *testing.T) {
			pocket, err := services.NewPocketService("consumer-key", "http://localhost:8090/callback", "")
			if err != nil {
				t.Fatalf("failed to create pocket service: %v", err)
			}

			runner := NewRunner(RunnerOpts{Pocket: pocket})

			if _, err := runner.collections()(""); !errors.Is(err, shared.ErrRemoteAuth) {
				t.Errorf("expected ErrRemoteAuth, got %v", err)
			}
		})

		t.Run("fails without a pocket service", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if _, err := runner.collections()("access-token"); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("callbackURI", func(t *testing.T) {
		t.Run("appends the state parameter", func(t *testing.T) {
			got, err := callbackURI("http://localhost:8090/callback", "abc123")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "http://localhost:8090/callback?state=abc123" {
				t.Errorf("unexpected uri %s", got)
			}
		})

		t.Run("preserves existing query parameters", func(t *testing.T) {
			got, err := callbackURI("http://localhost:8090/callback?source=cli", "abc")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			for _, want := range []string{"source=cli", "state=abc"} {
				if !strings.Contains(got, want) {
					t.Errorf("expected %s in %s", want, got)
				}
			}
		})

		t.Run("rejects an unparseable uri", func(t *testing.T) {
			if _, err := callbackURI("://missing-scheme", "abc"); !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})
}
