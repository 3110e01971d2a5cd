package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable consulted when no --config flag is given.
const EnvConfigPath = "DOCRANK_CONFIG"

// LayoutConfig describes the files inside a collection directory.
type LayoutConfig struct {
	InputFile    string `yaml:"input_file" validate:"required"`
	OutputFile   string `yaml:"output_file" validate:"required"`
	DocumentsDir string `yaml:"documents_dir"`
}

// DetectorConfig configures candidate-section detection.
type DetectorConfig struct {
	MaxPagesPerDoc int `yaml:"max_pages_per_doc" validate:"gte=1"`
	WindowLines    int `yaml:"window_lines" validate:"gte=1"`
}

// WeightsConfig holds the blend constants of the relevance score.
type WeightsConfig struct {
	Persona    float64 `yaml:"persona" validate:"gte=0"`
	Job        float64 `yaml:"job" validate:"gte=0"`
	Context    float64 `yaml:"context" validate:"gte=0"`
	Vector     float64 `yaml:"vector" validate:"gte=0"`
	Keyword    float64 `yaml:"keyword" validate:"gte=0"`
	TitleBonus float64 `yaml:"title_bonus" validate:"gte=0"`
}

// TFIDFConfig configures the term-vector similarity pass.
type TFIDFConfig struct {
	MaxFeatures int     `yaml:"max_features" validate:"gte=1"`
	MinNgram    int     `yaml:"min_ngram" validate:"gte=1"`
	MaxNgram    int     `yaml:"max_ngram" validate:"gtefield=MinNgram"`
	MinDF       int     `yaml:"min_df" validate:"gte=1"`
	MaxDF       float64 `yaml:"max_df" validate:"gt=0,lte=1"`
	SublinearTF *bool   `yaml:"sublinear_tf"`
}

// Sublinear reports whether term frequencies are log-scaled.
func (t TFIDFConfig) Sublinear() bool {
	return t.SublinearTF == nil || *t.SublinearTF
}

// RankerConfig groups ranking settings.
type RankerConfig struct {
	Weights WeightsConfig `yaml:"weights"`
	TFIDF   TFIDFConfig   `yaml:"tfidf"`
}

// RefinerConfig configures excerpt refinement.
type RefinerConfig struct {
	MaxLength int `yaml:"max_length" validate:"gte=1"`
}

// PersonasConfig points at an optional external persona knowledge base.
type PersonasConfig struct {
	Path string `yaml:"path"`
}

// FallbackConfig configures the simple processing mode.
type FallbackConfig struct {
	PagesPerDocument int `yaml:"pages_per_document" validate:"gte=1"`
	ExcerptLength    int `yaml:"excerpt_length" validate:"gte=1"`
}

// ExtractionConfig configures page-text extraction.
type ExtractionConfig struct {
	Workers int `yaml:"workers" validate:"gte=1"`
}

// HistoryConfig configures the run history database. An empty path disables it.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Collections []string         `yaml:"collections"`
	Layout      LayoutConfig     `yaml:"layout"`
	Detector    DetectorConfig   `yaml:"detector"`
	Ranker      RankerConfig     `yaml:"ranker"`
	Refiner     RefinerConfig    `yaml:"refiner"`
	Personas    PersonasConfig   `yaml:"personas"`
	Fallback    FallbackConfig   `yaml:"fallback"`
	Extraction  ExtractionConfig `yaml:"extraction"`
	History     HistoryConfig    `yaml:"history"`
	Logging     LoggingConfig    `yaml:"logging"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	// Decode onto the defaults so keys absent from the file keep them.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault tries $DOCRANK_CONFIG, ./docrank.yaml, then ~/.config/docrank/config.yaml.
// If none exists, it writes defaults to ~/.config/docrank/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		cfg, err := Load(envPath)
		return cfg, envPath, err
	}
	cwdPath := "docrank.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks value ranges declared in the struct tags.
func (c *AppConfig) Validate() error {
	return validator.New().Struct(c)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docrank", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{
		Collections: []string{"Collection 1", "Collection 2", "Collection 3"},
		Ranker: RankerConfig{
			Weights: WeightsConfig{Persona: 0.3, Job: 0.5, Context: 0.2, Vector: 0.4, Keyword: 0.6, TitleBonus: 0.1},
		},
	}
	applyConfigDefaults(cfg)
	return cfg
}

// applyConfigDefaults fills zero values that can never be meant literally.
// Weights are exempt: zero is a valid weight, so they default only in Default.
func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Layout.InputFile == "" {
		cfg.Layout.InputFile = "challenge1b_input.json"
	}
	if cfg.Layout.OutputFile == "" {
		cfg.Layout.OutputFile = "challenge1b_output.json"
	}
	if cfg.Layout.DocumentsDir == "" {
		cfg.Layout.DocumentsDir = "PDFs"
	}
	if cfg.Detector.MaxPagesPerDoc == 0 {
		cfg.Detector.MaxPagesPerDoc = 5
	}
	if cfg.Detector.WindowLines == 0 {
		cfg.Detector.WindowLines = 10
	}
	t := &cfg.Ranker.TFIDF
	if t.MaxFeatures == 0 {
		t.MaxFeatures = 2000
	}
	if t.MinNgram == 0 {
		t.MinNgram = 1
	}
	if t.MaxNgram == 0 {
		t.MaxNgram = 3
	}
	if t.MinDF == 0 {
		t.MinDF = 1
	}
	if t.MaxDF == 0 {
		t.MaxDF = 0.95
	}
	if t.SublinearTF == nil {
		sublinear := true
		t.SublinearTF = &sublinear
	}
	if cfg.Refiner.MaxLength == 0 {
		cfg.Refiner.MaxLength = 1000
	}
	if cfg.Fallback.PagesPerDocument == 0 {
		cfg.Fallback.PagesPerDocument = 3
	}
	if cfg.Fallback.ExcerptLength == 0 {
		cfg.Fallback.ExcerptLength = 300
	}
	if cfg.Extraction.Workers == 0 {
		cfg.Extraction.Workers = 4
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
