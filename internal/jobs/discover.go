// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Job discovery from a definitions directory

package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// Skipped records a candidate file that did not yield a definition
type Skipped struct {
	Path string
	Err  error
}

// Result is the outcome of one discovery scan
type Result struct {
	Definitions []Definition
	Skipped     []Skipped
}

// Discover loads every definition file in dir. Files that fail to load are
// logged and skipped; only a failure to read the directory itself is returned.
func Discover(ctx context.Context, dir string, logger *zap.Logger) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read jobs directory %s: %w", dir, err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	result := &Result{}
	seen := make(map[string]string)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !IsDefinitionFile(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		def, err := Load(path)
		if err != nil {
			logger.Warn("skipping job definition", zap.String("file", path), zap.Error(err))
			result.Skipped = append(result.Skipped, Skipped{Path: path, Err: err})
			continue
		}

		if first, ok := seen[def.Name]; ok {
			err := fmt.Errorf("%w: %q already defined in %s", ErrDuplicateName, def.Name, first)
			logger.Error("skipping job definition", zap.String("file", path), zap.Error(err))
			result.Skipped = append(result.Skipped, Skipped{Path: path, Err: err})
			continue
		}
		seen[def.Name] = path

		result.Definitions = append(result.Definitions, def)
	}

	sort.Slice(result.Definitions, func(i, j int) bool {
		return result.Definitions[i].Name < result.Definitions[j].Name
	})

	return result, nil
}
