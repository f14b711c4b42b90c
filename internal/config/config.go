// file: internal/config/config.go
// version: 2.1.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	SourceDir string
	DestDir   string

	FolderTemplate string
	FileTemplate   string
	CasePolicy     string
	ZeroPadWidth   int

	Workers   int
	MaxDepth  int
	Recursive bool

	Providers     []string // priority order
	AutoConfirm   bool     // auto-accept high-confidence matches
	MinConfidence float64

	CacheDir     string
	CacheTTL     time.Duration
	JournalPath  string
	LibraryIndex string

	APIKeys struct {
		GoogleBooks string
		OpenAI      string
	}
}

var AppConfig Config

// InitConfig initializes the application configuration from viper.
func InitConfig() {
	dataDir := defaultDataDir()

	viper.SetDefault("folder_template", "{AuthorLastFirst}/{SeriesName}/{SeriesIndex} - {Title} ({Year})")
	viper.SetDefault("file_template", "{DiscPad}{TrackPad} - {Title}")
	viper.SetDefault("case_policy", "title_case")
	viper.SetDefault("zero_pad_width", 0)
	viper.SetDefault("workers", 4)
	viper.SetDefault("max_depth", 0)
	viper.SetDefault("recursive", true)
	viper.SetDefault("providers", []string{"local", "openlibrary", "googlebooks", "librivox"})
	viper.SetDefault("min_confidence", 0.65)
	viper.SetDefault("cache_dir", filepath.Join(dataDir, "cache"))
	viper.SetDefault("cache_ttl", "168h")
	viper.SetDefault("journal_path", filepath.Join(dataDir, "journal.db"))
	viper.SetDefault("library_index", filepath.Join(dataDir, "library.bleve"))

	AppConfig = Config{
		SourceDir:      viper.GetString("source_dir"),
		DestDir:        viper.GetString("dest_dir"),
		FolderTemplate: viper.GetString("folder_template"),
		FileTemplate:   viper.GetString("file_template"),
		CasePolicy:     viper.GetString("case_policy"),
		ZeroPadWidth:   viper.GetInt("zero_pad_width"),
		Workers:        viper.GetInt("workers"),
		MaxDepth:       viper.GetInt("max_depth"),
		Recursive:      viper.GetBool("recursive"),
		Providers:      viper.GetStringSlice("providers"),
		AutoConfirm:    viper.GetBool("auto_confirm"),
		MinConfidence:  viper.GetFloat64("min_confidence"),
		CacheDir:       viper.GetString("cache_dir"),
		CacheTTL:       viper.GetDuration("cache_ttl"),
		JournalPath:    viper.GetString("journal_path"),
		LibraryIndex:   viper.GetString("library_index"),
	}

	// API Keys
	AppConfig.APIKeys.GoogleBooks = viper.GetString("api_keys.googlebooks")
	AppConfig.APIKeys.OpenAI = viper.GetString("api_keys.openai")

	if AppConfig.Workers < 1 {
		AppConfig.Workers = 1
	}
}

// defaultDataDir is ~/.audiobook-renamer, falling back to the working
// directory when the home directory cannot be resolved.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".audiobook-renamer"
	}
	return filepath.Join(home, ".audiobook-renamer")
}
