// Package render writes the HTML chart artifacts of an analysis run. Every
// renderer takes plain data already computed by the pipeline and returns the
// path of the written file, so chart generation stays free of model types
// beyond the knowledge tree.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	logx "github.com/feedback-insight-poc/server/pkg/logger"
)

// Renderer writes chart files into a per-thread output directory.
type Renderer struct {
	dir string
}

// NewRenderer creates the output directory when missing.
func NewRenderer(dir string) (*Renderer, error) {
	if dir == "" {
		return nil, fmt.Errorf("output dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Renderer{dir: dir}, nil
}

// Dir returns the directory the renderer writes into.
func (r *Renderer) Dir() string {
	return r.dir
}

type renderable interface {
	Render(w io.Writer) error
}

func (r *Renderer) writeChart(name string, chart renderable) (string, error) {
	path := filepath.Join(r.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	if err := chart.Render(f); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	logx.Debug().Str("file", path).Msg("chart written")
	return path, nil
}
