package content

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy is safe for concurrent use once built.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Sanitize strips scripts, event handlers and other unsafe markup from html
// while keeping the structural tags an editor produces (p, a, strong, lists, ...).
// Externally generated HTML must pass through here before it becomes draft content.
func Sanitize(html string) string {
	return strings.TrimSpace(policy.Sanitize(html))
}
