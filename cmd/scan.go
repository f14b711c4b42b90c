// file: cmd/scan.go
// version: 1.1.0
// guid: 7b8c9d0e-1f2a-4b3c-5d6e-7f8a9b0c1d2f

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdfalk/audiobook-renamer/internal/metrics"
	"github.com/jdfalk/audiobook-renamer/internal/models"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [source]",
	Short: "Discover audiobook sets in a directory tree",
	Long: `Scan walks a directory tree, groups audio files into audiobook sets
(folding disc subfolders like CD1 into their parent), probes tags, and
reports what it found including numbering problems.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := resolveSource(args)
		if err != nil {
			return err
		}

		fmt.Printf("Scanning directory: %s\n", source)

		sets, err := newScanner().Scan(cmd.Context(), source)
		if err != nil {
			return fmt.Errorf("scan error: %w", err)
		}

		metrics.AddSetsScanned(len(sets))
		for _, set := range sets {
			metrics.AddTracksScanned(set.TotalTracks)
		}

		fmt.Printf("\nFound %d audiobook set(s)\n", len(sets))
		for _, set := range sets {
			printSet(set)
		}
		return nil
	},
}

func printSet(set *models.AudiobookSet) {
	fmt.Printf("\n%s\n", set.SourcePath)
	fmt.Printf("  Title:  %s\n", orUnknown(set.TitleGuess))
	if set.AuthorGuess != "" {
		fmt.Printf("  Author: %s\n", set.AuthorGuess)
	}
	if set.SeriesGuess != "" {
		fmt.Printf("  Series: %s", set.SeriesGuess)
		if set.VolumeGuess != "" {
			fmt.Printf(" #%s", set.VolumeGuess)
		}
		fmt.Println()
	}
	fmt.Printf("  Tracks: %d", set.TotalTracks)
	if set.MultiDisc() {
		fmt.Printf(" across %d discs", set.DiscCount)
	}
	fmt.Println()

	for _, warning := range set.Warnings {
		fmt.Printf("  Warning: %s\n", warning)
	}
	for _, track := range set.Tracks {
		for _, warning := range track.Warnings {
			fmt.Printf("  Warning: %s: %s\n", track.Filename(), warning)
		}
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}
