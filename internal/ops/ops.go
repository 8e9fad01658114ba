// Package ops implements the draft operations shared by the CLI, the MCP
// server and the dashboard. Each operation takes an Input struct and
// returns an Output struct ready for JSON encoding.
package ops

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	DefaultFeedLimit = 10
	MaxFeedLimit     = 50
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// clampLimit applies a default for non-positive values and an upper bound.
func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}
