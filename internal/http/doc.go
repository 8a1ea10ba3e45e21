// Package http exposes the session manager and matching engine over HTTP.
//
// Every browser gets an origin: a signed `portal_origin` cookie whose subject
// namespaces its keys in the shared store, the way local storage is scoped
// per site. The router exposes:
//   - POST /login: body {"name","email","password","rememberMe"}. Responds 201
//     with {"session","redirect"} or 422 with {"message","fieldErrors"}.
//   - POST /logout: clears the origin's session. Responds {"loggedOut":true}.
//   - GET /session: the live session with its remaining lifetime, or 401.
//   - POST /session/extend: restarts the expiry window. Responds {"extended"}.
//   - GET /session/guard?page=: {"allowed","redirect"} for a page visit.
//   - PUT /profile: replaces the profile of the logged-in user, or 401.
//   - GET|PUT /preferences/theme: {"theme"} with values light or dark.
//   - POST /preferences/theme/toggle: flips the theme and responds {"theme"}.
//   - GET /opportunities: the catalog with capacity counters.
//   - PUT /opportunities/used: body {"title","used"} seeds a counter and
//     responds with the catalog, 404 for unknown titles or 409 when out of range.
//   - POST /match: body {"skills","qualification","location","sectors",
//     "socialCategory","pastParticipation"}. Responds {"results"} or 400.
//   - GET /healthz and GET /metrics sit outside the origin middleware.
//
// Request/response DTOs live alongside their handlers.
package http
