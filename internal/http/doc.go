// Package http provides HTTP handlers and middleware for the reading
// tracker API.
//
// Every endpoint responds with the uniform envelope
// {"success", "data"?, "error"?, "message"?, "details"?}. The router exposes:
//   - POST /api/auth/register, POST /api/auth/login: account creation and
//     login, both returning a bearer token. POST /api/auth/logout revokes
//     the presented token's session.
//   - GET /api/books, POST /api/books, PUT /api/books/{id},
//     DELETE /api/books/{id}: shelf CRUD exchanging the bookDTO payload
//     defined in book_handler.go. Mutations are owner-only.
//   - GET /api/reading-sessions, POST /api/reading-sessions,
//     PUT /api/reading-sessions: the daily reading-time ledger. POST adds
//     minutes to the submitted day; PUT sets the day total, with zero
//     removing the entry.
//   - GET /api/settings, PUT /api/settings: the per-user settings record
//     with partial-field merge on update.
//   - GET /api/stats: the dashboard aggregate (totals, streaks, heatmap,
//     goal progress, genre distribution, quote of the day).
//   - POST /api/import: bulk ingestion of books and sessions with per-item
//     error accounting.
//
// All routes except register and login require a bearer token validated by
// the RequireSession middleware. Request/response DTOs live alongside their
// respective handlers so tests and documentation share the same ground
// truth.
package http
