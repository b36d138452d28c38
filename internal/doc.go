// Package internal documents the campus connect server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, problem rendering, and routing
// - domain: event lifecycle and user business logic
// - storage: database access and repositories (pgx + Postgres)
// - auth, config, media, metrics, sanitize: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
