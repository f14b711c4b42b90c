// file: internal/models/plan.go
// version: 1.1.0
// guid: 7d4e5f6a-1b2c-4d8e-9f0a-3b4c5d6e7f8a

package models

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"
)

// caseInsensitiveFS reports whether the running environment is presumed to
// have a case-insensitive filesystem. Overridable in tests.
var caseInsensitiveFS = runtime.GOOS == "darwin" || runtime.GOOS == "windows"

// RenameOperation moves one track from OldPath to NewPath. TempPath is the
// intermediate name used by the two-phase executor.
type RenameOperation struct {
	OldPath  string `yaml:"old_path"`
	NewPath  string `yaml:"new_path"`
	TempPath string `yaml:"temp_path,omitempty"`
	Track    *Track `yaml:"-"`
}

// RenamePlan is one versioned set of rename operations. A plan is data;
// execution belongs to the transaction layer.
type RenamePlan struct {
	ID         string            `yaml:"id"`
	CreatedAt  time.Time         `yaml:"created_at"`
	SourcePath string            `yaml:"source_path"`
	Identity   *ProviderIdentity `yaml:"identity,omitempty"`
	DestFolder string            `yaml:"dest_folder,omitempty"`
	Operations []RenameOperation `yaml:"operations"`
	DryRun     bool              `yaml:"dry_run"`

	Conflicts []string `yaml:"conflicts,omitempty"`
	Warnings  []string `yaml:"warnings,omitempty"`
}

// Validate clears and repopulates the plan's conflicts and warnings.
// It returns false when any two operations resolve to the same target path.
// Case-insensitive collisions are warnings, not conflicts, and only on
// environments presumed case-insensitive.
func (p *RenamePlan) Validate() bool {
	p.Conflicts = nil
	p.Warnings = nil

	counts := make(map[string]int)
	for _, op := range p.Operations {
		counts[op.NewPath]++
	}
	var dups []string
	for path, n := range counts {
		if n > 1 {
			dups = append(dups, path)
		}
	}
	sort.Strings(dups)
	for _, path := range dups {
		p.Conflicts = append(p.Conflicts, fmt.Sprintf("Duplicate target path: %s", path))
	}

	if caseInsensitiveFS {
		lower := make(map[string][]string)
		for _, op := range p.Operations {
			key := strings.ToLower(op.NewPath)
			lower[key] = append(lower[key], op.NewPath)
		}
		var folded []string
		for key, paths := range lower {
			if len(paths) > 1 && counts[paths[0]] <= 1 {
				folded = append(folded, key)
			}
		}
		sort.Strings(folded)
		for _, key := range folded {
			p.Warnings = append(p.Warnings, fmt.Sprintf("Case-insensitive path collision: %s", key))
		}
	}

	return len(p.Conflicts) == 0
}

// OperationRecord captures one applied file operation for undo.
type OperationRecord struct {
	OperationID    string     `yaml:"operation_id"`
	Timestamp      time.Time  `yaml:"timestamp"`
	Type           string     `yaml:"type"` // "rename" or "retag"
	OldPath        string     `yaml:"old_path,omitempty"`
	NewPath        string     `yaml:"new_path,omitempty"`
	OldTags        *AudioTags `yaml:"old_tags,omitempty"`
	NewTags        *AudioTags `yaml:"new_tags,omitempty"`
	OldContentHash string     `yaml:"old_content_hash,omitempty"`
	NewContentHash string     `yaml:"new_content_hash,omitempty"`
}
