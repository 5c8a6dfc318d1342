// Package config loads gapfill settings from defaults, an optional config
// file and GAPFILL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/wdm0006/gapfill/pkg/analyze"
	"github.com/wdm0006/gapfill/pkg/executor"
	"github.com/wdm0006/gapfill/pkg/profile"
	"github.com/wdm0006/gapfill/pkg/transform/impute"
)

// EnvPrefix is prepended to upper-cased keys; nested keys join with "_",
// e.g. GAPFILL_THRESHOLDS_SKEW_LIMIT.
const EnvPrefix = "GAPFILL"

// Thresholds mirrors analyze.Thresholds plus the executor's drop limit.
type Thresholds struct {
	CategoricalNumericRatio       float64 `mapstructure:"categorical_numeric_ratio" yaml:"categorical_numeric_ratio" toml:"categorical_numeric_ratio"`
	CategoricalNumericMaxDistinct int     `mapstructure:"categorical_numeric_max_distinct" yaml:"categorical_numeric_max_distinct" toml:"categorical_numeric_max_distinct"`
	IDUniqueRatio                 float64 `mapstructure:"id_unique_ratio" yaml:"id_unique_ratio" toml:"id_unique_ratio"`
	SkewLimit                     float64 `mapstructure:"skew_limit" yaml:"skew_limit" toml:"skew_limit"`
	TextUniqueRatio               float64 `mapstructure:"text_unique_ratio" yaml:"text_unique_ratio" toml:"text_unique_ratio"`
	LowCardinalityRatio           float64 `mapstructure:"low_cardinality_ratio" yaml:"low_cardinality_ratio" toml:"low_cardinality_ratio"`
	DropOrFlagPct                 float64 `mapstructure:"drop_or_flag_pct" yaml:"drop_or_flag_pct" toml:"drop_or_flag_pct"`
	DropColumnPct                 float64 `mapstructure:"drop_column_pct" yaml:"drop_column_pct" toml:"drop_column_pct"`
}

type Config struct {
	SampleRows              int        `mapstructure:"sample_rows" yaml:"sample_rows" toml:"sample_rows"`
	Delimiter               string     `mapstructure:"delimiter" yaml:"delimiter" toml:"delimiter"`
	TopValues               int        `mapstructure:"top_values" yaml:"top_values" toml:"top_values"`
	Neighbors               int        `mapstructure:"neighbors" yaml:"neighbors" toml:"neighbors"`
	CreateMissingIndicators bool       `mapstructure:"create_missing_indicators" yaml:"create_missing_indicators" toml:"create_missing_indicators"`
	Thresholds              Thresholds `mapstructure:"thresholds" yaml:"thresholds" toml:"thresholds"`
}

// Default returns the built-in settings.
func Default() *Config {
	t := analyze.DefaultThresholds()
	e := executor.DefaultOptions()
	return &Config{
		TopValues: profile.DefaultTopK,
		Neighbors: impute.DefaultNeighbors,
		Thresholds: Thresholds{
			CategoricalNumericRatio:       t.CategoricalNumericRatio,
			CategoricalNumericMaxDistinct: t.CategoricalNumericMaxDistinct,
			IDUniqueRatio:                 t.IDUniqueRatio,
			SkewLimit:                     t.SkewLimit,
			TextUniqueRatio:               t.TextUniqueRatio,
			LowCardinalityRatio:           t.LowCardinalityRatio,
			DropOrFlagPct:                 t.DropOrFlagPct,
			DropColumnPct:                 e.DropColumnPct,
		},
	}
}

// Load resolves settings. Precedence: env > config file > defaults.
// With an empty cfgFile, ./gapfill.{yaml,yml,toml} is read when present.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("sample_rows", d.SampleRows)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("top_values", d.TopValues)
	v.SetDefault("neighbors", d.Neighbors)
	v.SetDefault("create_missing_indicators", d.CreateMissingIndicators)
	v.SetDefault("thresholds.categorical_numeric_ratio", d.Thresholds.CategoricalNumericRatio)
	v.SetDefault("thresholds.categorical_numeric_max_distinct", d.Thresholds.CategoricalNumericMaxDistinct)
	v.SetDefault("thresholds.id_unique_ratio", d.Thresholds.IDUniqueRatio)
	v.SetDefault("thresholds.skew_limit", d.Thresholds.SkewLimit)
	v.SetDefault("thresholds.text_unique_ratio", d.Thresholds.TextUniqueRatio)
	v.SetDefault("thresholds.low_cardinality_ratio", d.Thresholds.LowCardinalityRatio)
	v.SetDefault("thresholds.drop_or_flag_pct", d.Thresholds.DropOrFlagPct)
	v.SetDefault("thresholds.drop_column_pct", d.Thresholds.DropColumnPct)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("gapfill")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings no component can honor.
func (c *Config) Validate() error {
	if c.SampleRows < 0 {
		return fmt.Errorf("sample_rows must be >= 0, got %d", c.SampleRows)
	}
	if c.Neighbors < 1 {
		return fmt.Errorf("neighbors must be >= 1, got %d", c.Neighbors)
	}
	if len([]rune(c.Delimiter)) > 1 && c.Delimiter != `\t` {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	if p := c.Thresholds.DropColumnPct; p < 0 || p > 100 {
		return fmt.Errorf("thresholds.drop_column_pct must be within [0, 100], got %g", p)
	}
	return nil
}

// DelimiterRune returns the configured delimiter, 0 meaning sniff. The
// two-character text \t names a tab.
func (c *Config) DelimiterRune() rune {
	if c.Delimiter == `\t` {
		return '\t'
	}
	for _, r := range c.Delimiter {
		return r
	}
	return 0
}

func (c *Config) AnalyzeOptions(file string) analyze.Options {
	return analyze.Options{
		File: file,
		Thresholds: analyze.Thresholds{
			CategoricalNumericRatio:       c.Thresholds.CategoricalNumericRatio,
			CategoricalNumericMaxDistinct: c.Thresholds.CategoricalNumericMaxDistinct,
			IDUniqueRatio:                 c.Thresholds.IDUniqueRatio,
			SkewLimit:                     c.Thresholds.SkewLimit,
			TextUniqueRatio:               c.Thresholds.TextUniqueRatio,
			LowCardinalityRatio:           c.Thresholds.LowCardinalityRatio,
			DropOrFlagPct:                 c.Thresholds.DropOrFlagPct,
		},
		TopK: c.TopValues,
	}
}

func (c *Config) ExecutorOptions(file string) executor.Options {
	return executor.Options{
		CreateMissingIndicators: c.CreateMissingIndicators,
		Neighbors:               c.Neighbors,
		DropColumnPct:           c.Thresholds.DropColumnPct,
		InputFile:               file,
	}
}

// Encode renders c as "toml" or, for any other format, YAML.
func Encode(c *Config, format string) ([]byte, error) {
	var (
		b   []byte
		err error
	)
	switch strings.ToLower(format) {
	case "toml":
		b, err = toml.Marshal(c)
	default:
		b, err = yaml.Marshal(c)
	}
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return b, nil
}

// Save writes c as TOML when path ends in .toml and as YAML otherwise.
func Save(c *Config, path string) error {
	b, err := Encode(c, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
