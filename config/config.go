// Package config loads the settings shared by the commands.
//
// Values start from Defaults, are overridden by an optional YAML file and
// then by NIRSPEC_* environment variables, and are validated last.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/cwbudde/algo-nirspec/classify"
	"github.com/cwbudde/algo-nirspec/rv"
	"github.com/cwbudde/algo-nirspec/spectrum"
)

// EnvPrefix prefixes every environment override, e.g. NIRSPEC_RV_TRIALS.
const EnvPrefix = "NIRSPEC"

// ErrInvalid wraps validation failures.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the complete command configuration.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	RV       RVConfig       `yaml:"rv" envconfig:"RV"`
	Template TemplateConfig `yaml:"template" envconfig:"TEMPLATE"`
}

// PathsConfig holds file system locations.
type PathsConfig struct {
	Catalog     string `yaml:"catalog" envconfig:"CATALOG" validate:"required"`
	TemplateDir string `yaml:"template_dir" envconfig:"TEMPLATE_DIR" validate:"required"`
	FigureDir   string `yaml:"figure_dir" envconfig:"FIGURE_DIR"`     // empty disables figures
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"` // empty disables metrics output
}

// LoggingConfig selects the log level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
}

// RVConfig mirrors the options of rv.Estimate.
type RVConfig struct {
	Trials             int     `yaml:"trials" envconfig:"TRIALS" validate:"min=1"`
	Oversample         int     `yaml:"oversample" envconfig:"OVERSAMPLE" validate:"min=1"`
	NoiseScale         float64 `yaml:"noise_scale" envconfig:"NOISE_SCALE" validate:"gte=0"`
	Window             int     `yaml:"window" envconfig:"WINDOW" validate:"min=4"`
	MaxFailureFraction float64 `yaml:"max_failure_fraction" envconfig:"MAX_FAILURE_FRACTION" validate:"gte=0,lte=1"`
	VelocityPerPixel   float64 `yaml:"velocity_per_pixel" envconfig:"VELOCITY_PER_PIXEL" validate:"gte=0"` // 0 derives it from the grid
	Seed               uint64  `yaml:"seed" envconfig:"SEED"`
	Workers            int     `yaml:"workers" envconfig:"WORKERS" validate:"gte=0"` // 0 means GOMAXPROCS
	Band               string  `yaml:"band" envconfig:"BAND" validate:"band"`
}

// TemplateConfig selects which templates the template builder produces.
type TemplateConfig struct {
	RequireUncertainty bool     `yaml:"require_uncertainty" envconfig:"REQUIRE_UNCERTAINTY"`
	Types              []string `yaml:"types" envconfig:"TYPES" validate:"min=1,dive,sptype"`
	Gravities          []string `yaml:"gravities" envconfig:"GRAVITIES" validate:"min=1,dive,gravity"`
	Bands              []string `yaml:"bands" envconfig:"BANDS" validate:"min=1,dive,band"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	types := classify.TemplateTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}

	return &Config{
		Paths: PathsConfig{
			Catalog:     "nirspec.db",
			TemplateDir: "templates",
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		RV: RVConfig{
			Trials:             rv.DefaultTrials,
			Oversample:         rv.DefaultOversample,
			NoiseScale:         rv.DefaultNoiseScale,
			Window:             rv.DefaultWindow,
			MaxFailureFraction: rv.DefaultMaxFailureFraction,
			Seed:               rv.DefaultSeed,
			Band:               spectrum.J.Name,
		},
		Template: TemplateConfig{
			RequireUncertainty: true,
			Types:              names,
			Gravities:          []string{"unspecified", "field", "beta", "gamma", "young"},
			Bands:              []string{spectrum.J.Name, spectrum.H.Name, spectrum.K.Name},
		},
	}
}

// Load builds the configuration from the defaults, the YAML file at path
// (skipped when path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config: load from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	return nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()

	// Registration only fails for empty tags or nil functions.
	_ = v.RegisterValidation("sptype", func(fl validator.FieldLevel) bool {
		t, err := classify.ParseType(fl.Field().String())
		return err == nil && t.Valid()
	})
	_ = v.RegisterValidation("gravity", func(fl validator.FieldLevel) bool {
		_, err := classify.ParseGravityCode(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("band", func(fl validator.FieldLevel) bool {
		b, ok := spectrum.BandByName(fl.Field().String())
		return ok && b.Name != spectrum.OPT.Name
	})

	return v
}

// Options converts the section into rv.Estimate options.
func (c RVConfig) Options() []rv.Option {
	opts := []rv.Option{
		rv.WithTrials(c.Trials),
		rv.WithOversample(c.Oversample),
		rv.WithNoiseScale(c.NoiseScale),
		rv.WithWindow(c.Window),
		rv.WithMaxFailureFraction(c.MaxFailureFraction),
		rv.WithSeed(c.Seed),
	}
	if c.VelocityPerPixel > 0 {
		opts = append(opts, rv.WithVelocityPerPixel(c.VelocityPerPixel))
	}

	workers := c.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return append(opts, rv.WithWorkers(workers))
}

// Keys expands the configured types and gravities into template keys,
// type-major.
func (c TemplateConfig) Keys() ([]classify.Key, error) {
	var keys []classify.Key
	for _, ts := range c.Types {
		t, err := classify.ParseType(ts)
		if err != nil {
			return nil, fmt.Errorf("config: template type: %w", err)
		}
		for _, gs := range c.Gravities {
			g, err := classify.ParseGravityCode(gs)
			if err != nil {
				return nil, fmt.Errorf("config: template gravity: %w", err)
			}
			keys = append(keys, classify.Key{Type: t, Gravity: g})
		}
	}
	return keys, nil
}

// BandList resolves the configured band names.
func (c TemplateConfig) BandList() ([]spectrum.Band, error) {
	out := make([]spectrum.Band, 0, len(c.Bands))
	for _, name := range c.Bands {
		b, ok := spectrum.BandByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown band %q", ErrInvalid, name)
		}
		out = append(out, b)
	}
	return out, nil
}
