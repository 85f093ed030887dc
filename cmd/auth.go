package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/recall/internal/repositories"
	"github.com/desertthunder/recall/internal/server"
	"github.com/desertthunder/recall/internal/services"
	"github.com/desertthunder/recall/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthPocket runs the Pocket authorization handshake and stores the resulting
// access token on the user row.
//
// Pocket predates the OAuth2 code flow: the request token is issued up front,
// the user approves it in a browser, and the redirect back carries no code.
// The redirect is only the signal that the request token can now be exchanged.
func (r *Runner) AuthPocket(ctx context.Context, cmd *cli.Command) error {
	userID := int64(cmd.Int("user"))

	consumerKey := r.config.Credentials.Pocket.ConsumerKey
	if consumerKey == "" {
		return fmt.Errorf("%w: pocket consumer_key must be set in config.toml", shared.ErrMissingCredentials)
	}

	state := shared.GenerateID()
	redirectURI, err := callbackURI(r.config.Credentials.Pocket.RedirectURI, state)
	if err != nil {
		return err
	}

	// The redirect URI carries the state token, so the flow gets its own
	// client rather than reusing the runner's.
	svc, err := services.NewPocketService(consumerKey, redirectURI, "")
	if err != nil {
		return err
	}

	r.writePlain("→ Requesting a token from Pocket...\n")
	requestToken, err := svc.RequestToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain request token: %w", err)
	}

	accessToken, err := r.doPocketAuth(svc, requestToken, state)
	if err != nil {
		return err
	}

	if err := r.withStore(func(store *repositories.Store) error {
		return store.Users.Update(ctx, userID, nil, &accessToken)
	}); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Pocket token stored for user %d\n\n", userID)
	r.writePlain("You can now use: recall sync --user %d\n", userID)

	return nil
}

// doPocketAuth serves the local callback, sends the user to Pocket's approval
// page, and waits for the redirect that completes the handshake.
func (r *Runner) doPocketAuth(svc *services.PocketService, requestToken, state string) (string, error) {
	exchange := func(ctx context.Context) (string, error) {
		return svc.Authorize(ctx, requestToken)
	}

	authHandler := server.NewPocketAuthHandler(exchange, state)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(authHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	authURL := svc.AuthorizeURL(requestToken)
	r.writePlain("→ Opening browser for Pocket authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.AuthResult

	select {
	case result = <-authHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return "", fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return "", fmt.Errorf("authorization timed out after 2 minutes")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return "", fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.AccessToken == "" {
		return "", fmt.Errorf("no access token received")
	}

	return result.AccessToken, nil
}

// AuthStatus reports whether a user has completed Pocket authorization.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	userID := int64(cmd.Int("user"))

	return r.withStore(func(store *repositories.Store) error {
		user, err := store.Users.Get(ctx, userID)
		if err != nil {
			return err
		}

		r.writePlain("User: %s (ID %d)\n", user.Email, user.ID)
		if user.HasPocketToken() {
			r.writePlain("Pocket: ✓ authorized\n")
		} else {
			r.writePlain("Pocket: ✗ not authorized\n")
			r.writePlain("Run 'recall auth pocket --user %d' to connect.\n", user.ID)
		}
		if user.LastPocketSyncTime != nil {
			r.writePlain("Last sync watermark: %d\n", *user.LastPocketSyncTime)
		} else {
			r.writePlain("Last sync watermark: (never)\n")
		}
		return nil
	})
}

// callbackURI appends the state token to the configured redirect URI.
func callbackURI(base, state string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: pocket redirect_uri %q: %v", shared.ErrInvalidConfig, base, err)
	}

	query := parsed.Query()
	query.Set("state", state)
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}
