package bridge

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/heartmarshall/lexibridge/internal/domain"
)

// DefaultInputPath is used when no input path is given on the command line.
const DefaultInputPath = "./data/raw-wiktextract-data.jsonl"

// Config holds bridge importer settings.
type Config struct {
	InputPath        string `yaml:"input_path"           env:"IMPORT_INPUT_PATH"          env-default:"./data/raw-wiktextract-data.jsonl"`
	SourceLang       string `yaml:"source_lang"          env:"IMPORT_SOURCE_LANG"         env-default:"de"`
	BridgeLang       string `yaml:"bridge_lang"          env:"IMPORT_BRIDGE_LANG"         env-default:"en"`
	TargetLang       string `yaml:"target_lang"          env:"IMPORT_TARGET_LANG"         env-default:"fa"`
	BatchSize        int    `yaml:"batch_size"           env:"IMPORT_BATCH_SIZE"          env-default:"1000"`
	CacheSize        int    `yaml:"cache_size"           env:"IMPORT_CACHE_SIZE"          env-default:"0"`
	ErrorSummaryPath string `yaml:"error_summary_path"   env:"IMPORT_ERROR_SUMMARY_PATH"  env-default:"import_error_summary.txt"`
	RawSnippetLen    int    `yaml:"raw_snippet_len"      env:"IMPORT_RAW_SNIPPET_LEN"     env-default:"200"`
	ProgressEvery    int    `yaml:"progress_every"       env:"IMPORT_PROGRESS_EVERY"      env-default:"100000"`
	SkipClosure      bool   `yaml:"skip_closure"         env:"IMPORT_SKIP_CLOSURE"`
	DryRun           bool   `yaml:"dry_run"              env:"IMPORT_DRY_RUN"`

	// SkipSenseTranslations limits extraction to top-level translation tables.
	SkipSenseTranslations bool `yaml:"skip_sense_translations" env:"IMPORT_SKIP_SENSE_TRANSLATIONS"`
}

// LoadConfig reads importer configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("import config: read %s: %w", path, err)
			}
			return &cfg, nil
		}
		return nil, fmt.Errorf("import config: file %s not found", path)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("import config: read env: %w", err)
	}

	return &cfg, nil
}

// Path returns the configured bridge languages.
func (c Config) Path() domain.BridgePath {
	return domain.BridgePath{
		Source: domain.LangCode(c.SourceLang),
		Bridge: domain.LangCode(c.BridgeLang),
		Target: domain.LangCode(c.TargetLang),
	}
}

// Validate checks importer settings. It does not touch the filesystem.
func (c Config) Validate() error {
	if err := c.Path().Validate(); err != nil {
		return err
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must be >= 0 (got %d)", c.CacheSize)
	}
	if c.RawSnippetLen < 0 {
		return fmt.Errorf("raw_snippet_len must be >= 0 (got %d)", c.RawSnippetLen)
	}
	return nil
}
