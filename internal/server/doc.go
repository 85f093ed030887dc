// Package server provides HTTP routing, middleware, and the Pocket authorization callback.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in registration order (first added sees the request first),
// following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method-scoped patterns.
//
// # Authorization Callback Handler
//
// [PocketAuthHandler] implements the browser half of Pocket's authorization handshake.
//
// Pocket's protocol predates OAuth2: the CLI obtains a request token up front, sends the
// user to Pocket's approval page, and the redirect back carries no authorization code.
// The handler's job is to validate the state parameter (CSRF protection), fire the
// token exchange for the request token the CLI already holds, and send the result
// through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// When the user runs the auth command, a temporary HTTP server starts on localhost:3000,
// handles the redirect from Pocket's approval page, and shuts down after the access
// token is stored.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
