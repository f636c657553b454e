// Package evidence persists capture artifacts (screenshots, PDFs, decision
// records) and hands back stable, dereferenceable references.
package evidence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is the pluggable evidence backend. Implementations must generate
// collision-resistant object names and return a URL the artifact can be
// fetched from later.
type Store interface {
	Upload(ctx context.Context, data []byte, name string) (string, error)
	UploadJSON(ctx context.Context, v any, name string) (string, error)
}

// timeNow is injectable for tests.
var timeNow = time.Now

// ObjectName prefixes a name with a timestamp and a short random fragment so
// repeated captures for the same alert never collide.
func ObjectName(name string) string {
	ts := timeNow().UTC().Format("20060102_150405")
	frag := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%s_%s", ts, frag, sanitizeName(name))
}

func sanitizeName(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		" ", "_",
		":", "_",
	)
	return replacer.Replace(name)
}

func contentTypeFor(name string) string {
	switch {
	case strings.HasSuffix(name, ".png"):
		return "image/png"
	case strings.HasSuffix(name, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(name, ".json"):
		return "application/json"
	case strings.HasSuffix(name, ".csv"):
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
