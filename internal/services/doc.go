// Package services implements clients for the remote HTTP APIs recall
// depends on: Pocket, Google Trends, SendGrid, the Hacker News search API
// and the Wayback Machine.
//
// # Pocket
//
// [PocketService] holds application-level credentials (consumer key and
// redirect URI) and implements the OAuth-style authorization handshake.
// [PocketService.ForUser] binds a per-user access token and returns a
// [UserPocket] for item retrieval and modification.
//
// Retrieval normalizes the remote record shape into [ActiveItem] and
// [RemovedItem] values before they leave this package; callers never see
// raw wire records. Timeouts and connection failures are retried a fixed
// number of times, every other failure is surfaced immediately.
//
// # Trends
//
// [TrendsService] fetches daily trending searches from Google Trends. The
// endpoint is unofficial and prefixes its JSON payload with a junk byte
// sequence that must be stripped before decoding.
//
// # SendGrid
//
// [SendGridService] sends mail through the SendGrid v3 API using a bearer
// token carried by an [oauth2] token source.
//
// # Lookups
//
// [HackerNewsService] finds the best discussion thread for a saved URL via
// the Algolia search API, and [WaybackService] resolves archived snapshots
// through the Wayback Machine availability endpoint.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrRemoteAuth] : credentials missing, rejected or expired
//   - [shared.ErrTransportExhausted] : retry budget spent on timeouts
//   - [shared.ErrDeserialization] : unexpected response shape
//   - [shared.ErrAPIRequest] : any other failed HTTP request
package services
