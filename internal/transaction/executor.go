// file: internal/transaction/executor.go
// version: 1.3.0
// guid: 9c0d1e2f-3a4b-4c5d-6e7f-8a9b0c1d2e3f

// Package transaction applies rename plans atomically. Every rename goes
// through a two-phase protocol: all sources move to temporary names first,
// then all temporaries move to their final targets. Any failure rolls back
// the completed steps in reverse order, and committed transactions are
// journaled so they can be undone later.
package transaction

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/jdfalk/audiobook-renamer/internal/metrics"
	"github.com/jdfalk/audiobook-renamer/internal/models"
)

// Executor applies and undoes rename plans.
type Executor struct {
	journal *Journal

	// VerifyHashes enables content hashing before and after each move.
	VerifyHashes bool
}

// NewExecutor creates an executor over a journal. The journal is required;
// unjournaled renames cannot be undone.
func NewExecutor(journal *Journal) *Executor {
	return &Executor{
		journal:      journal,
		VerifyHashes: true,
	}
}

// Apply executes a plan and returns the committed transaction id. Plans
// flagged as dry runs and plans with conflicts are rejected outright.
func (e *Executor) Apply(ctx context.Context, plan *models.RenamePlan) (string, error) {
	if plan.DryRun {
		return "", fmt.Errorf("plan %s is a dry run; refusing to apply", plan.ID)
	}
	if !plan.Validate() {
		return "", fmt.Errorf("plan %s has conflicts: %v", plan.ID, plan.Conflicts)
	}
	if len(plan.Operations) == 0 {
		return "", fmt.Errorf("plan %s has no operations", plan.ID)
	}

	for i := range plan.Operations {
		op := &plan.Operations[i]
		if _, err := os.Stat(op.OldPath); err != nil {
			return "", fmt.Errorf("source missing: %s: %w", op.OldPath, err)
		}
		if _, err := os.Stat(op.NewPath); err == nil {
			return "", fmt.Errorf("target already exists: %s", op.NewPath)
		}
	}

	txnID := ulid.Make().String()
	if err := e.journal.Begin(txnID, plan.SourcePath); err != nil {
		return "", err
	}

	// Phase 1: move every source aside. Temp names live next to the
	// source so the move never crosses filesystems.
	var staged int
	var err error
	for i := range plan.Operations {
		if err = ctx.Err(); err != nil {
			break
		}
		op := &plan.Operations[i]
		op.TempPath = fmt.Sprintf("%s.tmp-%s", op.OldPath, txnID)
		if err = os.Rename(op.OldPath, op.TempPath); err != nil {
			err = fmt.Errorf("failed to stage %s: %w", op.OldPath, err)
			break
		}
		staged = i + 1
	}
	if err != nil {
		e.rollbackStaged(plan, staged)
		_ = e.journal.SetStatus(txnID, StatusRolledBack)
		return "", err
	}

	// Phase 2: move temporaries to their final targets.
	var finalized int
	for i := range plan.Operations {
		if err = ctx.Err(); err != nil {
			break
		}
		op := &plan.Operations[i]

		var oldHash string
		if e.VerifyHashes {
			if oldHash, err = hashFile(op.TempPath); err != nil {
				break
			}
		}

		if err = os.MkdirAll(filepath.Dir(op.NewPath), 0o755); err != nil {
			break
		}
		if err = moveFile(op.TempPath, op.NewPath); err != nil {
			break
		}
		finalized = i + 1

		newHash := oldHash
		if e.VerifyHashes {
			if newHash, err = hashFile(op.NewPath); err != nil {
				break
			}
			if newHash != oldHash {
				err = fmt.Errorf("content hash mismatch after moving %s", op.NewPath)
				break
			}
		}

		rec := models.OperationRecord{
			OperationID:    ulid.Make().String(),
			Timestamp:      time.Now().UTC(),
			Type:           "rename",
			OldPath:        op.OldPath,
			NewPath:        op.NewPath,
			OldContentHash: oldHash,
			NewContentHash: newHash,
		}
		if jerr := e.journal.Record(txnID, i, rec); jerr != nil {
			err = jerr
			break
		}
	}
	if err != nil {
		e.rollbackFinalized(plan, finalized)
		e.rollbackStagedFrom(plan, finalized, staged)
		_ = e.journal.SetStatus(txnID, StatusRolledBack)
		metrics.IncRename("rolled_back")
		return "", err
	}

	if err := e.journal.SetStatus(txnID, StatusCommitted); err != nil {
		return "", err
	}
	metrics.IncRename("applied")
	return txnID, nil
}

// rollbackStaged returns the first n staged files to their original names.
func (e *Executor) rollbackStaged(plan *models.RenamePlan, n int) {
	e.rollbackStagedFrom(plan, 0, n)
}

func (e *Executor) rollbackStagedFrom(plan *models.RenamePlan, from, to int) {
	for i := to - 1; i >= from; i-- {
		op := &plan.Operations[i]
		if op.TempPath == "" {
			continue
		}
		if _, err := os.Stat(op.TempPath); err == nil {
			_ = os.Rename(op.TempPath, op.OldPath)
		}
	}
}

// rollbackFinalized moves the first n finalized targets back to their
// original paths, in reverse order.
func (e *Executor) rollbackFinalized(plan *models.RenamePlan, n int) {
	for i := n - 1; i >= 0; i-- {
		op := &plan.Operations[i]
		if _, err := os.Stat(op.NewPath); err == nil {
			_ = moveFile(op.NewPath, op.OldPath)
		}
	}
}

// Undo reverses a committed transaction by replaying its journal in
// reverse. Files whose content hash no longer matches the journaled hash
// are left in place and reported.
func (e *Executor) Undo(ctx context.Context, txnID string) error {
	info, err := e.journal.Get(txnID)
	if err != nil {
		return err
	}
	if info.Status != StatusCommitted {
		return fmt.Errorf("transaction %s is %s, not committed", txnID, info.Status)
	}

	records, err := e.journal.Operations(txnID)
	if err != nil {
		return err
	}

	var failures []string
	for i := len(records) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := records[i]

		if _, err := os.Stat(rec.NewPath); err != nil {
			failures = append(failures, fmt.Sprintf("%s: file missing", rec.NewPath))
			continue
		}
		if e.VerifyHashes && rec.NewContentHash != "" {
			hash, err := hashFile(rec.NewPath)
			if err != nil {
				failures = append(failures, fmt.Sprintf("%s: %v", rec.NewPath, err))
				continue
			}
			if hash != rec.NewContentHash {
				failures = append(failures, fmt.Sprintf("%s: modified since rename", rec.NewPath))
				continue
			}
		}

		if err := os.MkdirAll(filepath.Dir(rec.OldPath), 0o755); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", rec.OldPath, err))
			continue
		}
		if err := moveFile(rec.NewPath, rec.OldPath); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", rec.NewPath, err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("undo of %s incomplete: %d file(s) could not be restored: %v",
			txnID, len(failures), failures)
	}
	metrics.IncRename("undone")
	return e.journal.SetStatus(txnID, StatusUndone)
}

// moveFile renames a file, falling back to copy-and-delete across
// filesystem boundaries.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}

// hashFile computes the BLAKE2b-256 content hash of a file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
