package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// AuthResult contains the result of a Pocket authorization flow.
type AuthResult struct {
	AccessToken string
	err         error
}

func (a *AuthResult) Error() error {
	return a.err
}

// ExchangeFunc trades the already-issued request token for an access token.
// It runs when the browser redirect lands, which is Pocket's signal that the
// user approved the token.
type ExchangeFunc func(ctx context.Context) (string, error)

// PocketAuthHandler handles the browser redirect that completes Pocket
// authorization. Implements the Handler interface for registration with a
// Router.
//
// Pocket's handshake predates OAuth2: the redirect carries no authorization
// code, so the handler's job is to validate the state token and fire the
// exchange for the request token the CLI already holds.
type PocketAuthHandler struct {
	exchange    ExchangeFunc
	state       string
	resultChan  chan AuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewPocketAuthHandler creates a callback handler. The state token is baked
// into the redirect URI by the caller and should be cryptographically random
// for CSRF protection.
func NewPocketAuthHandler(exchange ExchangeFunc, state string) *PocketAuthHandler {
	return &PocketAuthHandler{
		exchange:   exchange,
		state:      state,
		resultChan: make(chan AuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *PocketAuthHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the authorization redirect.
//
// Validates the state parameter, exchanges the request token for an access
// token, and sends the result through the result channel.
func (h *PocketAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only handle callback once
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	state := r.URL.Query().Get("state")
	if state != h.state {
		err := fmt.Errorf("invalid state parameter")
		h.Send(AuthResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	token, err := h.exchange(r.Context())
	if err != nil {
		h.Send(AuthResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(AuthResult{AccessToken: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #EF4056; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Pocket Connected</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`)
}

// Send sends the auth result through the channel (only once).
func (h *PocketAuthHandler) Send(result AuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *PocketAuthHandler) Result() <-chan AuthResult {
	return h.resultChan
}
