// Package identity implements registration, login and actor resolution.
//
// Layering:
// - domain: user/session entities and identity errors
// - application: registration, login, profile and actor-resolution services
// - ports: stable boundaries for persistence, hashing, tokens and time
// - adapters: memory, postgres, security (bcrypt/uuid) and HTTP handler
// - transport: module-private DTOs for HTTP contracts
//
// Password hashing and token generation live behind ports so the core never
// touches crypto primitives directly.
package identity
