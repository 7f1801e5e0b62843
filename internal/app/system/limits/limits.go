// internal/app/system/limits/limits.go
package limits

// Request body size limits for the JSON API.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxDocumentBody bounds create and update payloads, which carry the
	// editor's content.
	MaxDocumentBody = 4 << 20 // 4 MB

	// MaxCommandBody bounds move and reorder payloads.
	MaxCommandBody = 256 << 10 // 256 KB
)
