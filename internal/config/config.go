// Package config loads scorer settings from the environment and an optional
// YAML file.
//
// Environment variables use the OMR_ prefix (OMR_ANSWERKEY_DIR,
// OMR_UPLOAD_DIR, OMR_RESULTS_CSV, OMR_DATABASE_URL, OMR_LOG_LEVEL,
// OMR_PARTITION, OMR_STRICT) and win over the file. Detection thresholds live
// under the layout key, e.g. layout.fill.dark_fraction or
// OMR_LAYOUT_FILL_DARK_FRACTION.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ironsheep/omr-scorer/internal/omr"
	"github.com/spf13/viper"
)

// Config holds resolved settings.
type Config struct {
	AnswerKeyDir string
	UploadDir    string
	// ResultsCSV is the default ledger file name inside UploadDir.
	ResultsCSV string
	// DatabaseURL selects the Postgres ledger when non-empty.
	DatabaseURL string
	LogLevel    string
	Partition   omr.Partition
	Strict      bool
	Layout      omr.Layout
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// ResultsPath returns the ledger path for name, or for ResultsCSV when name
// is empty.
func (c *Config) ResultsPath(name string) string {
	if name == "" {
		name = c.ResultsCSV
	}
	if !strings.HasSuffix(name, ".csv") {
		name += ".csv"
	}
	return filepath.Join(c.UploadDir, filepath.Base(name))
}

// Load reads configuration. file may be empty, in which case omr.yaml in the
// working directory is used if present.
func Load(file string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OMR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("answerkey_dir", "answer_keys")
	v.SetDefault("upload_dir", "uploaded_omr")
	v.SetDefault("results_csv", "scores.csv")
	v.SetDefault("database_url", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("partition", "gap")
	v.SetDefault("strict", false)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("omr")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	partition, err := omr.ParsePartition(v.GetString("partition"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AnswerKeyDir: v.GetString("answerkey_dir"),
		UploadDir:    v.GetString("upload_dir"),
		ResultsCSV:   v.GetString("results_csv"),
		DatabaseURL:  v.GetString("database_url"),
		LogLevel:     v.GetString("log_level"),
		Partition:    partition,
		Strict:       v.GetBool("strict"),
	}
	if cfg.Layout, err = layoutFrom(v); err != nil {
		return nil, err
	}
	if err := cfg.Layout.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// layoutFrom overlays layout.* keys on the default layout. Range checks are
// left to Layout.Validate except where a value would not fit its field.
func layoutFrom(v *viper.Viper) (omr.Layout, error) {
	l := omr.DefaultLayout()

	if v.IsSet("layout.row_threshold") {
		l.RowThreshold = v.GetInt("layout.row_threshold")
	}

	// Canvas and locator
	if v.IsSet("layout.canvas_width") {
		l.Standardize.CanvasWidth = v.GetInt("layout.canvas_width")
	}
	if v.IsSet("layout.canvas_height") {
		l.Standardize.CanvasHeight = v.GetInt("layout.canvas_height")
	}
	if v.IsSet("layout.padding") {
		l.Standardize.Padding = v.GetInt("layout.padding")
	}
	if v.IsSet("layout.min_shapes") {
		l.Standardize.MinShapes = v.GetInt("layout.min_shapes")
	}

	// Binarization, shared by both detection passes
	if v.IsSet("layout.blur_sigma") {
		l.Binarization.BlurSigma = v.GetFloat64("layout.blur_sigma")
	}
	if v.IsSet("layout.block_size") {
		l.Binarization.BlockSize = v.GetInt("layout.block_size")
	}
	if v.IsSet("layout.threshold_c") {
		l.Binarization.C = v.GetFloat64("layout.threshold_c")
	}
	l.Standardize.Binarization = l.Binarization

	// Bubble filter
	if v.IsSet("layout.bubble.min_area") {
		l.Bubble.MinArea = v.GetFloat64("layout.bubble.min_area")
	}
	if v.IsSet("layout.bubble.max_area") {
		l.Bubble.MaxArea = v.GetFloat64("layout.bubble.max_area")
	}
	if v.IsSet("layout.bubble.min_circularity") {
		l.Bubble.MinCircularity = v.GetFloat64("layout.bubble.min_circularity")
	}

	// Fill policy
	if v.IsSet("layout.fill.inner_margin") {
		l.Fill.InnerMargin = v.GetFloat64("layout.fill.inner_margin")
	}
	if v.IsSet("layout.fill.dark_level") {
		level := v.GetInt("layout.fill.dark_level")
		if level < 0 || level > 255 {
			return l, fmt.Errorf("%w: layout.fill.dark_level %d outside 0-255",
				omr.ErrInvalidLayout, level)
		}
		l.Fill.DarkLevel = uint8(level)
	}
	if v.IsSet("layout.fill.dark_fraction") {
		l.Fill.DarkFraction = v.GetFloat64("layout.fill.dark_fraction")
	}
	if v.IsSet("layout.fill.mean_level") {
		l.Fill.MeanLevel = v.GetFloat64("layout.fill.mean_level")
	}
	return l, nil
}
