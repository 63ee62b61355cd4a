package econctl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// openOutput returns stdout for an empty path, otherwise creates the file
// and any missing parent directories.
func openOutput(path string) (io.Writer, func() error, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	if dir := filepath.Dir(p); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(p)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}
