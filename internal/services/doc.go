// Package services defines the shared contracts for vendor adapters.
//
// Key responsibilities:
//   - Request/result types exchanged between the router and every adapter.
//   - Structured error markers plus the Classify helper that translate vendor
//     failures into the failure classes the health tracker acts on
//     (rate-limited, transient, permanent).
//   - The StatusError type and HTTP helpers adapters use so Retry-After
//     headers and status codes are interpreted uniformly.
//
// Adapters perform a single attempt per call; retrying on another vendor is
// the router's job, so none of the clients in the subpackages loop internally.
package services
