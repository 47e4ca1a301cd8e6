// Package server exposes billing retrieval over HTTP.
//
// Provider credentials arrive in each request body, are used for exactly one
// operation, and are never logged or persisted; the server itself is
// stateless. Handlers translate the shared error taxonomy onto status codes:
// bad input is 400, credential failures are 401, provider-side failures and
// contract violations are 502.
package server
