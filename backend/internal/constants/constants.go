package constants

// Search constants
const (
	// DefaultSearchLimit caps username search results when the caller gives no limit
	DefaultSearchLimit = 10
)

// Session constants
const (
	// RevokedTokenPrefix namespaces revoked token ids in Redis
	RevokedTokenPrefix = "revoked:"
)
