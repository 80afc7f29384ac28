// Package source reads leaderboard text from disk and watches it for changes.
package source

import (
	"context"
	"fmt"
	"os"

	"github.com/okian/rallyboard/internal/domain/parser"
)

// ReadFile returns the lines of the file at path.
func ReadFile(ctx context.Context, path string) ([]string, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	lines, err := parser.ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}
