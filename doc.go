// Package auth implements passwordless, single-active-session authentication
// on top of RSA-signed JWTs.
//
// Token lifecycle:
//   - Login is initiated with a user identifier only. The Auther mints a
//     short-lived token, emails it as a link, and records its token id as the
//     user's current session in a TokenStore.
//   - Promotion exchanges a valid short-lived token for a long-lived one. Every
//     mint generates a fresh token id and overwrites the stored record, so the
//     newest token is the only one the middleware will accept.
//   - Logout overwrites the record with a random token id that no issued token
//     carries, invalidating the session without deleting history.
//
// Request pipeline:
//   - middleware/authware provides the two stages: Authenticate verifies the
//     token signature and cross-checks its id against the TokenStore, and
//     Authorize gates an operation behind a per-user (app code, method code)
//     permission lookup. Stages short-circuit on the first failure.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther to describe
//     login, promotion, and logout events. Sinks run best-effort (errors are
//     logged) so you can forward to a database or queue without blocking
//     authentication.
package auth
