// Package api contains the HTTP handlers exposing the request pool:
// task submission (single and batch), task and pool status queries.
// Handlers translate between JSON DTOs and the pool's domain types and map
// pool errors to HTTP status codes without leaking internal details.
package api
