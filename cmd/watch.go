// file: cmd/watch.go
// version: 1.1.0
// guid: 1f2a3b4c-5d6e-4f7a-8b9c-0d1e2f3a4b5c

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jdfalk/audiobook-renamer/internal/watcher"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [source]",
	Short: "Watch a source tree and rescan when new audio arrives",
	Long: `Watch monitors the source tree for audio file changes. Once the tree
settles, it rescans and reports newly discovered sets. Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := resolveSource(args)
		if err != nil {
			return err
		}
		debounce, _ := cmd.Flags().GetDuration("debounce")

		rescan := func(root string) {
			sets, err := newScanner().Scan(context.Background(), root)
			if err != nil {
				fmt.Printf("Rescan error: %v\n", err)
				return
			}
			fmt.Printf("Rescan found %d audiobook set(s)\n", len(sets))
			for _, set := range sets {
				printSet(set)
			}
		}

		w := watcher.New(rescan, debounce)
		if err := w.Start(source); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer w.Stop()

		fmt.Printf("Watching %s for changes (Ctrl-C to stop)\n", source)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sig:
		case <-cmd.Context().Done():
		}
		fmt.Println("\nStopping watcher")
		return nil
	},
}
