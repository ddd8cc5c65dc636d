package session

import "encoding/json"

// State is the session lifecycle state.
type State string

const (
	// StateUnauthenticated means no valid session exists.
	StateUnauthenticated State = "unauthenticated"
	// StateHydrating means a persisted credential is being exchanged for
	// a user record. Callers never observe this state across a completed
	// Login, Register, or Hydrate call.
	StateHydrating State = "hydrating"
	// StateAuthenticated means the user record was hydrated successfully.
	StateAuthenticated State = "authenticated"
)

// Fixed storage keys for the persisted credential pair. The session store
// is the only writer of these keys; views never read them directly.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// Result is the outcome of an operation whose failure is an expected,
// user-facing condition (bad credentials, rejected form fields) rather
// than a transport fault.
type Result struct {
	// OK is true when the operation succeeded.
	OK bool
	// Message is a short human-readable failure summary.
	Message string
	// Fields carries the server's error payload unchanged, when present,
	// so callers can render field-level messages.
	Fields json.RawMessage
}

// Storage is the durable key/value storage the credential pair persists into.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// CartClearer is the slice of the cart store the session needs on logout:
// ending a session empties the cart and its persisted storage.
type CartClearer interface {
	Clear()
}
