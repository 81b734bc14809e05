package config

import (
	"fmt"
	"strings"

	"github.com/rpgo/fire-compare/internal/logging"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FIRECOMPARE_LOGGING_LEVEL.
const EnvPrefix = "FIRECOMPARE"

// Settings holds application defaults that are not part of a request.
type Settings struct {
	Logging    logging.Config     `mapstructure:"logging"`
	Output     OutputSettings     `mapstructure:"output"`
	Simulation SimulationDefaults `mapstructure:"simulation"`
	Data       DataFiles          `mapstructure:"data"`
}

// OutputSettings selects the default report format and locale.
type OutputSettings struct {
	Format    string `mapstructure:"format"`
	Locale    string `mapstructure:"locale"`
	Directory string `mapstructure:"directory"`
}

// SimulationDefaults fill in unset simulation fields of a request.
type SimulationDefaults struct {
	Trials           int     `mapstructure:"trials"`
	HorizonYears     int     `mapstructure:"horizon_years"`
	ReturnVolatility float64 `mapstructure:"return_volatility"`
	Workers          int     `mapstructure:"workers"`
}

// DataFiles override the embedded tables.
type DataFiles struct {
	Jurisdictions string `mapstructure:"jurisdictions"`
	Rates         string `mapstructure:"rates"`
	Returns       string `mapstructure:"returns"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		Logging:    logging.Config{Level: "warn", Format: "console"},
		Output:     OutputSettings{Format: "console", Locale: "en-US"},
		Simulation: SimulationDefaults{Trials: 1000, HorizonYears: 100, ReturnVolatility: 0.15},
	}
}

// LoadSettings reads an optional settings file and applies environment
// overrides. An empty path uses defaults and the environment only.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	defaults := DefaultSettings()
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.output_file", "")
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.locale", defaults.Output.Locale)
	v.SetDefault("output.directory", "")
	v.SetDefault("simulation.trials", defaults.Simulation.Trials)
	v.SetDefault("simulation.horizon_years", defaults.Simulation.HorizonYears)
	v.SetDefault("simulation.return_volatility", defaults.Simulation.ReturnVolatility)
	v.SetDefault("simulation.workers", 0)
	v.SetDefault("data.jurisdictions", "")
	v.SetDefault("data.rates", "")
	v.SetDefault("data.returns", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading settings file %s: %w", path, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}
	return &settings, nil
}

// Validate reports settings that will be ignored. The log level is checked
// by logging.New, which rejects an invalid one.
func (s *Settings) Validate() []string {
	var warnings []string
	if s.Simulation.Trials < 0 {
		warnings = append(warnings, fmt.Sprintf("simulation.trials %d is negative", s.Simulation.Trials))
	}
	if s.Simulation.Workers < 0 {
		warnings = append(warnings, fmt.Sprintf("simulation.workers %d is negative", s.Simulation.Workers))
	}
	return warnings
}
