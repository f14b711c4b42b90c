// file: cmd/search.go
// version: 1.1.0
// guid: 0e1f2a3b-4c5d-4e6f-7a8b-9c0d1e2f3a4b

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jdfalk/audiobook-renamer/internal/config"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search the library index of organized audiobooks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		idx := openLibrary()
		if idx == nil {
			return fmt.Errorf("library index unavailable")
		}
		defer idx.Close()

		entries, err := idx.Search(strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No matches")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%s", e.Title)
			if e.Author != "" {
				fmt.Printf(" by %s", e.Author)
			}
			if e.SeriesName != "" {
				fmt.Printf(" (%s", e.SeriesName)
				if e.SeriesIndex != "" {
					fmt.Printf(" #%s", e.SeriesIndex)
				}
				fmt.Printf(")")
			}
			if e.Year > 0 {
				fmt.Printf(" [%d]", e.Year)
			}
			fmt.Printf("\n  %s\n", e.Path)
		}
		return nil
	},
}

// providersCmd represents the providers command
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured metadata providers in priority order",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx := openLibrary()
		if idx != nil {
			defer idx.Close()
		}
		manager, store := buildManager(idx)
		if store != nil {
			defer store.Close()
		}

		fmt.Println("Providers (priority order):")
		for i, p := range manager.Providers() {
			w := p.Weights()
			fmt.Printf("  %d. %-12s title=%.2f author=%.2f series=%.2f narrator=%.2f year=%.2f\n",
				i+1, p.Name(), w.Title, w.Author, w.Series, w.Narrator, w.Year)
		}
		fmt.Printf("\nCache: %s (TTL %s)\n", config.AppConfig.CacheDir, config.AppConfig.CacheTTL)
		return nil
	},
}
