// Package limits bounds result sizes and request bodies.
package limits

const (
	// MaxJSONBody caps every JSON request body.
	MaxJSONBody = 64 << 10 // 64 KB

	// MaxBatchIDs caps the ids accepted by one batch-get call.
	MaxBatchIDs = 100

	DefaultMaxResults = 10
	MaxResultsCap     = 100
)

// Results holds the configured maxResults policy.
type Results struct {
	Default int
	Cap     int
}

// DefaultResults is the policy used when nothing is configured.
var DefaultResults = Results{Default: DefaultMaxResults, Cap: MaxResultsCap}

// Clamp resolves a caller-supplied maxResults: zero means the default,
// and anything above the cap is cut to it. Negative values are the
// caller's to reject before calling Clamp.
func (r Results) Clamp(n int) int {
	def, limit := r.Default, r.Cap
	if def <= 0 {
		def = DefaultMaxResults
	}
	if limit <= 0 {
		limit = MaxResultsCap
	}
	if def > limit {
		def = limit
	}
	switch {
	case n == 0:
		return def
	case n > limit:
		return limit
	}
	return n
}
