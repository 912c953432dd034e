// Package http serves the campus portal on top of the session manager and
// the registration planner.
//
// Every request passes the route guard first. Page requests (GET, HEAD) that
// the session may not see are redirected with 303 See Other. Anonymous
// callers go to /login. Signed-in callers visiting / or /login, or a portal
// of another role, go to their own portal. Other methods on guarded paths
// answer 401 or 403 with a JSON error body.
//
// Endpoints:
//   - POST /login: body {"id","password"}. Response {"principal","home","expiresAt"}.
//     The backend token never leaves the portal.
//   - POST /logout: ends the session. Always 204.
//   - GET /session: {"status","principal","home","expiresAt"}.
//   - GET /, /admin/..., /doctor/..., /student/...: {"view","principal"}.
//   - GET /student/registration: available courses and the planner.
//   - POST /student/registration/courses: body {"courseCode","sectionId"}.
//   - DELETE /student/registration/courses/{code}
//   - PUT /student/registration/sections: body {"courseCode","sectionId"}.
//   - POST /student/registration/clear
//   - POST /student/registration/commit: two-step submission to the backend.
//   - POST /student/registration/drop: body {"courseCode"}.
//
// Conflicts answer 409 with the clashing entries so the page can name them.
package http
