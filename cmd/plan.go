// file: cmd/plan.go
// version: 1.3.0
// guid: 8c9d0e1f-2a3b-4c5d-6e7f-8a9b0c1d2e3f

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jdfalk/audiobook-renamer/internal/ai"
	"github.com/jdfalk/audiobook-renamer/internal/config"
	"github.com/jdfalk/audiobook-renamer/internal/models"
	"github.com/jdfalk/audiobook-renamer/internal/plan"
	"github.com/jdfalk/audiobook-renamer/internal/transaction"
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan [source]",
	Short: "Match audiobooks and build rename plans",
	Long: `Plan scans the source tree, matches each audiobook set against the
configured metadata providers, and writes one rename plan per set. Plans
are dry runs until applied; review them, then run 'apply'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := resolveSource(args)
		if err != nil {
			return err
		}
		outputDir, _ := cmd.Flags().GetString("output")

		sets, err := newScanner().Scan(cmd.Context(), source)
		if err != nil {
			return fmt.Errorf("scan error: %w", err)
		}
		if len(sets) == 0 {
			fmt.Println("No audiobook sets found")
			return nil
		}

		idx := openLibrary()
		if idx != nil {
			defer idx.Close()
		}
		manager, store := buildManager(idx)
		if store != nil {
			defer store.Close()
		}
		parser := ai.NewParser(config.AppConfig.APIKeys.OpenAI, config.AppConfig.APIKeys.OpenAI != "")

		builder := &plan.Builder{
			Engine:         newEngine(),
			FolderTemplate: config.AppConfig.FolderTemplate,
			FileTemplate:   config.AppConfig.FileTemplate,
			ZeroPadWidth:   config.AppConfig.ZeroPadWidth,
			DestRoot:       config.AppConfig.DestDir,
		}

		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return err
		}

		var planned, unmatched int
		for _, set := range sets {
			// Heuristics that produced only a raw title leave nothing for
			// the providers to rank; let the AI parser take a pass first.
			if parser.IsEnabled() && set.AuthorGuess == "" && set.SeriesGuess == "" {
				folder := filepath.Base(set.SourcePath)
				if err := parser.Enrich(cmd.Context(), set, folder); err != nil {
					fmt.Printf("Warning: AI parse of %q failed: %v\n", folder, err)
				}
			}

			if err := manager.FindMatches(cmd.Context(), set); err != nil {
				return err
			}

			if set.ChosenIdentity == nil {
				set.ChosenIdentity = pickCandidate(set)
			}
			if set.ChosenIdentity == nil {
				unmatched++
				fmt.Printf("\n%s: no confident match", set.SourcePath)
				if len(set.Candidates) > 0 {
					fmt.Printf(" (%d candidate(s) below threshold)", len(set.Candidates))
				}
				fmt.Println("; planning from folder and tag guesses")
			}

			p, err := builder.Build(set)
			if err != nil {
				return fmt.Errorf("failed to plan %s: %w", set.SourcePath, err)
			}
			printPlan(set, p)

			path := filepath.Join(outputDir, p.ID+".yaml")
			if err := plan.Save(p, path); err != nil {
				return err
			}
			fmt.Printf("  Plan written: %s\n", path)
			planned++
		}

		fmt.Printf("\nPlanned %d set(s), %d without a confident match\n", planned, unmatched)
		return nil
	},
}

// pickCandidate selects the best candidate at or above the confidence
// floor. High-confidence picks are automatic; medium ones only with
// auto-confirm enabled.
func pickCandidate(set *models.AudiobookSet) *models.ProviderIdentity {
	if len(set.Candidates) == 0 {
		return nil
	}
	best := set.Candidates[0]
	if best.Confidence < config.AppConfig.MinConfidence {
		return nil
	}
	if best.Level == models.ConfidenceMedium && !config.AppConfig.AutoConfirm {
		return nil
	}
	identity := best.Identity
	return &identity
}

func printPlan(set *models.AudiobookSet, p *models.RenamePlan) {
	fmt.Printf("\n%s\n", set.SourcePath)
	if p.Identity != nil {
		fmt.Printf("  Matched: %s", p.Identity.Title)
		if author := p.Identity.PrimaryAuthor(); author != "" {
			fmt.Printf(" by %s", author)
		}
		fmt.Printf(" [%s]\n", p.Identity.Provider)
	}
	fmt.Printf("  Target: %s\n", p.DestFolder)
	fmt.Printf("  Operations: %d\n", len(p.Operations))
	for _, conflict := range p.Conflicts {
		fmt.Printf("  CONFLICT: %s\n", conflict)
	}
	for _, warning := range p.Warnings {
		fmt.Printf("  Warning: %s\n", warning)
	}
}

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply <plan.yaml> [more plans...]",
	Short: "Apply rename plans as reversible transactions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		journal, err := openJournal()
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer journal.Close()

		idx := openLibrary()
		if idx != nil {
			defer idx.Close()
		}

		executor := transaction.NewExecutor(journal)
		for _, path := range args {
			p, err := plan.Load(path)
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Printf("Dry run of %s (%d operations):\n", p.ID, len(p.Operations))
				for _, op := range p.Operations {
					fmt.Printf("  %s\n    -> %s\n", op.OldPath, op.NewPath)
				}
				continue
			}

			p.DryRun = false
			txnID, err := executor.Apply(cmd.Context(), p)
			if err != nil {
				return fmt.Errorf("apply of %s failed: %w", path, err)
			}
			fmt.Printf("Applied %s as transaction %s (%d files)\n", p.ID, txnID, len(p.Operations))

			if idx != nil && p.Identity != nil {
				if err := idx.AddIdentity(p.DestFolder, p.Identity); err != nil {
					fmt.Printf("Warning: library index update failed: %v\n", err)
				}
			}
		}
		return nil
	},
}
