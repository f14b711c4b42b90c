// file: cmd/undo.go
// version: 1.1.0
// guid: 9d0e1f2a-3b4c-4d5e-6f7a-8b9c0d1e2f3a

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jdfalk/audiobook-renamer/internal/transaction"
)

// undoCmd represents the undo command
var undoCmd = &cobra.Command{
	Use:   "undo <transaction-id>",
	Short: "Reverse a committed rename transaction",
	Long: `Undo replays a transaction's journal in reverse, moving every file
back to its original path. Files modified since the rename (detected by
content hash) are left in place and reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		journal, err := openJournal()
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer journal.Close()

		executor := transaction.NewExecutor(journal)
		if err := executor.Undo(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Transaction %s undone\n", args[0])
		return nil
	},
}

// transactionsCmd represents the transactions command
var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "List recent rename transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		journal, err := openJournal()
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer journal.Close()

		infos, err := journal.List(time.Now().AddDate(0, 0, -days))
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Printf("No transactions in the last %d days\n", days)
			return nil
		}

		fmt.Printf("%-27s %-20s %-12s %6s  %s\n", "ID", "DATE", "STATUS", "FILES", "SOURCE")
		for _, info := range infos {
			fmt.Printf("%-27s %-20s %-12s %6d  %s\n",
				info.ID,
				info.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				info.Status,
				info.Operations,
				info.SourcePath,
			)
		}
		return nil
	},
}
