package nodes

import (
	"path/filepath"

	"github.com/feedback-insight-poc/server/internal/render"
)

// ===== Small helpers to keep nodes simple/readable =====

// threadRenderer opens the per-thread output directory for chart files.
func threadRenderer(baseDir, threadID string) (*render.Renderer, error) {
	if threadID == "" {
		threadID = "default"
	}
	return render.NewRenderer(filepath.Join(baseDir, threadID))
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func intPtr(n int) *int { return &n }

// truncate cuts s to at most max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
