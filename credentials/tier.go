package credentials

import "context"

// Keys written to a tier. They match the keys the web client keeps in browser storage.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserEmail    = "user_email"
	KeyUserRole     = "user_role"
	KeyUserName     = "user_name"
	KeyRememberMe   = "remember_me"
)

// Tier is one storage medium for the credential fields.
// Implementations must be safe for concurrent use and report an unavailable
// medium by wrapping errors.ErrStorageUnavailable.
type Tier interface {
	// Name identifies the tier in logs
	Name() string
	// Durable reports whether values survive the end of the session
	Durable() bool
	// Load returns every stored field; an empty tier returns an empty map
	Load(ctx context.Context) (map[string]string, error)
	// Replace atomically swaps the whole content of the tier for values
	Replace(ctx context.Context, values map[string]string) error
	// Clear removes every field; clearing an empty tier is not an error
	Clear(ctx context.Context) error
}
