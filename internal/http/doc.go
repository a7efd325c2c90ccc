// Package http provides the HTTP handlers and middleware for the agenda API.
//
// The router exposes the following endpoints:
//   - POST /login: issues a session token. Body: {"email","password"}. The
//     token is returned in the body, the `X-Session-Token` header and a
//     `session_token` cookie.
//   - DELETE /sessions/current: revokes the current session token and clears
//     the cookie. Returns 204 No Content.
//   - GET /api/agenda/eventos: the authenticated technician's unified agenda,
//     persisted events merged with projected next visits.
//   - POST /api/agenda/eventos: creates a manual event; scheduling conflicts
//     return 409 with the localized reason.
//   - PUT/DELETE /api/agenda/eventos/{id}: updates or removes an event owned
//     by the caller (403 otherwise).
//   - GET /api/agenda/eventos/all?userId=: every technician's agenda,
//     optionally filtered. Administrators only.
//   - PUT /api/agenda/visitas/{id}/reagendar: moves a visit's next-visit slot
//     to a new date, recording a permanent trail entry at the old date.
//   - GET /api/agenda/global?start=&end=: the global agenda for a period.
//   - GET /api/agenda/relatorio?start=&end=: report feed for the same period.
//   - GET /api/agenda/disponibilidade?year=&month=: per-day busy shifts of
//     the caller's month.
//   - GET /api/agenda/conflitos?date=&shift=: advisory warning naming other
//     technicians committed at the slot.
//   - GET /api/agenda/empresas?ids=: events tied to the given companies,
//     newest first.
//
// Request/response DTOs live alongside their handlers so tests and
// documentation share the same ground truth.
package http
