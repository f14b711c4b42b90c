// file: internal/plan/plan.go
// version: 1.2.1
// guid: 7a8b9c0d-1e2f-4a3b-4c5d-6e7f8a9b0c1d

// Package plan turns matched audiobook sets into versioned rename plans.
// A plan is pure data: building one never touches the filesystem beyond
// reading, and plans round-trip through YAML for review and later apply.
package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/jdfalk/audiobook-renamer/internal/models"
	"github.com/jdfalk/audiobook-renamer/internal/template"
)

// Builder renders rename plans from templates.
type Builder struct {
	Engine         *template.Engine
	FolderTemplate string
	FileTemplate   string
	ZeroPadWidth   int
	DestRoot       string // empty = rename in place under the source parent
}

// Build creates a plan for one set. Plans are born as dry runs; the apply
// path flips the flag explicitly. The plan is validated before return, so
// callers can check Conflicts immediately.
func (b *Builder) Build(set *models.AudiobookSet) (*models.RenamePlan, error) {
	if ok, errs := template.ValidateTemplate(b.FolderTemplate); !ok {
		return nil, fmt.Errorf("invalid folder template: %v", errs)
	}
	if ok, errs := template.ValidateTemplate(b.FileTemplate); !ok {
		return nil, fmt.Errorf("invalid file template: %v", errs)
	}

	destRoot := b.DestRoot
	if destRoot == "" {
		destRoot = filepath.Dir(set.SourcePath)
	}

	identity := set.ChosenIdentity
	folder := b.Engine.GenerateFolderName(set, identity, b.FolderTemplate)

	p := &models.RenamePlan{
		ID:         ulid.Make().String(),
		CreatedAt:  time.Now().UTC(),
		SourcePath: set.SourcePath,
		Identity:   identity,
		DestFolder: filepath.Join(destRoot, filepath.FromSlash(folder)),
		DryRun:     true,
	}

	var buildWarnings []string
	for _, track := range set.Tracks {
		if track.Status == models.StatusError {
			buildWarnings = append(buildWarnings, fmt.Sprintf("skipping unreadable file: %s", track.SrcPath))
			continue
		}

		filename := b.Engine.GenerateFilename(track, set, identity, b.FileTemplate, b.ZeroPadWidth)
		track.ProposedName = filename

		newPath := filepath.Join(destRoot, filepath.FromSlash(folder), filename)
		if newPath == track.SrcPath {
			continue
		}
		p.Operations = append(p.Operations, models.RenameOperation{
			OldPath: track.SrcPath,
			NewPath: newPath,
			Track:   track,
		})
	}

	// Validate clears Conflicts and Warnings before repopulating them, so
	// build-time warnings are attached afterwards.
	p.Validate()
	p.Warnings = append(p.Warnings, buildWarnings...)
	return p, nil
}

// Save writes a plan to a YAML file.
func Save(p *models.RenamePlan, path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a plan back from a YAML file and revalidates it.
func Load(path string) (*models.RenamePlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan %s: %w", path, err)
	}
	var p models.RenamePlan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", path, err)
	}
	p.Validate()
	return &p, nil
}
