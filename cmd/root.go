// file: cmd/root.go
// version: 2.1.0
// guid: 6a7b8c9d-0e1f-2a3b-4c5d-6e7f8a9b0c1d

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdfalk/audiobook-renamer/internal/cache"
	"github.com/jdfalk/audiobook-renamer/internal/config"
	"github.com/jdfalk/audiobook-renamer/internal/library"
	"github.com/jdfalk/audiobook-renamer/internal/metrics"
	"github.com/jdfalk/audiobook-renamer/internal/provider"
	"github.com/jdfalk/audiobook-renamer/internal/scanner"
	"github.com/jdfalk/audiobook-renamer/internal/template"
	"github.com/jdfalk/audiobook-renamer/internal/transaction"
)

var cfgFile string
var sourceDir string
var destDir string
var folderTemplate string
var fileTemplate string
var workers int

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "audiobook-renamer",
	Short: "Discover, match, and rename audiobook collections",
	Long: `Audiobook Renamer scans messy audiobook folders, matches each book
against online and local metadata sources, and renames files into a
consistent template-driven layout.

Renames are planned first and applied as reversible transactions, so any
batch can be undone.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, config.InitConfig, metrics.Register)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.audiobook-renamer.yaml)")
	rootCmd.PersistentFlags().StringVar(&sourceDir, "source", "", "source directory containing audiobooks")
	rootCmd.PersistentFlags().StringVar(&destDir, "dest", "", "destination root for organized audiobooks (default: rename in place)")
	rootCmd.PersistentFlags().StringVar(&folderTemplate, "folder-template", "{AuthorLastFirst}/{SeriesName}/{SeriesIndex} - {Title} ({Year})", "folder name template")
	rootCmd.PersistentFlags().StringVar(&fileTemplate, "file-template", "{DiscPad}{TrackPad} - {Title}", "file name template")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 4, "number of parallel probe workers")
	rootCmd.PersistentFlags().Bool("recursive", true, "descend into subdirectories when scanning")
	rootCmd.PersistentFlags().Int("max-depth", 0, "maximum scan depth (0 = unlimited)")

	viper.BindPFlag("source_dir", rootCmd.PersistentFlags().Lookup("source"))
	viper.BindPFlag("dest_dir", rootCmd.PersistentFlags().Lookup("dest"))
	viper.BindPFlag("folder_template", rootCmd.PersistentFlags().Lookup("folder-template"))
	viper.BindPFlag("file_template", rootCmd.PersistentFlags().Lookup("file-template"))
	viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	viper.BindPFlag("recursive", rootCmd.PersistentFlags().Lookup("recursive"))
	viper.BindPFlag("max_depth", rootCmd.PersistentFlags().Lookup("max-depth"))

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(transactionsCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	planCmd.Flags().String("output", "plans", "directory to write plan files")
	planCmd.Flags().Bool("auto", false, "auto-accept high-confidence matches without listing candidates")
	planCmd.Flags().Int("pad", 0, "zero padding width for track numbers (0 = auto)")
	viper.BindPFlag("auto_confirm", planCmd.Flags().Lookup("auto"))
	viper.BindPFlag("zero_pad_width", planCmd.Flags().Lookup("pad"))

	applyCmd.Flags().Bool("dry-run", false, "print operations without touching files")
	transactionsCmd.Flags().Int("days", 30, "list transactions from the last N days")
	searchCmd.Flags().Int("limit", 10, "maximum results")
	watchCmd.Flags().Duration("debounce", 0, "settle period before rescanning (default 5s)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".audiobook-renamer")
	}

	viper.SetEnvPrefix("AUDIOBOOK_RENAMER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// newScanner builds a scanner from the active configuration.
func newScanner() *scanner.Scanner {
	s := scanner.New(config.AppConfig.Workers)
	s.MaxDepth = config.AppConfig.MaxDepth
	s.Recursive = config.AppConfig.Recursive
	s.Progress = true
	return s
}

// newEngine builds the template engine from the active configuration.
func newEngine() *template.Engine {
	return template.NewEngine(template.CasePolicy(config.AppConfig.CasePolicy))
}

// openJournal opens the undo journal, creating its directory if needed.
func openJournal() (*transaction.Journal, error) {
	path := config.AppConfig.JournalPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return transaction.OpenJournal(path)
}

// openLibrary opens the library index; a nil index is returned when it
// cannot be opened so commands can degrade to network-only matching.
func openLibrary() *library.Index {
	idx, err := library.Open(config.AppConfig.LibraryIndex)
	if err != nil {
		fmt.Printf("Warning: library index unavailable: %v\n", err)
		return nil
	}
	return idx
}

// buildManager assembles the provider manager in configured priority order.
func buildManager(idx *library.Index) (*provider.Manager, *cache.Store) {
	store, err := cache.Open(config.AppConfig.CacheDir, config.AppConfig.CacheTTL)
	if err != nil {
		fmt.Printf("Warning: provider cache unavailable: %v\n", err)
		store = nil
	}

	var providers []provider.Provider
	for _, name := range config.AppConfig.Providers {
		switch name {
		case "local":
			providers = append(providers, provider.NewLocal(idx))
		case "openlibrary":
			providers = append(providers, provider.NewOpenLibrary())
		case "googlebooks":
			providers = append(providers, provider.NewGoogleBooks(config.AppConfig.APIKeys.GoogleBooks))
		case "librivox":
			providers = append(providers, provider.NewLibriVox())
		default:
			fmt.Printf("Warning: unknown provider %q skipped\n", name)
		}
	}
	return provider.NewManager(store, providers...), store
}

// resolveSource returns the source directory from flag, config, or args.
func resolveSource(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if config.AppConfig.SourceDir != "" {
		return config.AppConfig.SourceDir, nil
	}
	return "", fmt.Errorf("source directory not specified (use --source or a positional argument)")
}
