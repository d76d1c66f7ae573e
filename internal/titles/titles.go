// Package titles provides the existing-titles collaborator consumed by the
// duplicate-title guard.
package titles

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// Source yields the deduplicated titles already published or drafted.
type Source interface {
	ExistingTitles(ctx context.Context) ([]string, error)
}

// FileSource reads titles from a JSON file holding an array of strings.
// Entries are trimmed and deduplicated case-insensitively, keeping first
// occurrence.
type FileSource struct {
	Path string
}

func (f *FileSource) ExistingTitles(_ context.Context) ([]string, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, errors.New("titles file path is empty")
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		s := strings.TrimSpace(t)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

// Static serves a fixed list, for tests and callers that already hold the
// corpus in memory.
type Static []string

func (s Static) ExistingTitles(_ context.Context) ([]string, error) {
	return []string(s), nil
}
