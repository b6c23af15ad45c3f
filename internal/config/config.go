// Package config provides env-var-driven configuration loading.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the top-level application configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	Solver SolverConfig `yaml:"solver"`
	Weight WeightConfig `yaml:"weight"`
}

// AppConfig is the application's basic runtime configuration.
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// SolverConfig controls the CP-SAT solver driver's defaults.
type SolverConfig struct {
	DefaultSearchTime time.Duration `yaml:"default_search_time"`
	DefaultMode       string        `yaml:"default_mode"` // turbo|balanced
	MaxWorkers        int           `yaml:"max_workers"`
	PollInterval      time.Duration `yaml:"poll_interval"` // not read by the solver driver, whose balanced mode polls every 100ms
}

// WeightConfig carries the §6 weight-catalog defaults, each overridable
// from an input record's own weights map.
type WeightConfig struct {
	WeekdayWish        int `yaml:"weekday_wish"`
	ShiftWish          int `yaml:"shift_wish"`
	HolidayPattern     int `yaml:"holiday_pattern"`
	WorkPattern        int `yaml:"work_pattern"`
	ShiftPattern       int `yaml:"shift_pattern"`
	Pairing            int `yaml:"pairing"`
	Separation         int `yaml:"separation"`
	CustomPreset       int `yaml:"custom_preset"`
	Balance            int `yaml:"balance"`
	PairOverlap        int `yaml:"pair_overlap"`        // penalty, negative
	TriplePairOverlap  int `yaml:"triple_pair_overlap"` // penalty, negative
	SameShiftTriple    int `yaml:"same_shift_triple"`   // penalty, negative
	DayOnlyConsecutive int `yaml:"day_only_consecutive_work"`
	UnsetPenalty       int `yaml:"unset_penalty"` // penalty, negative
}

// DefaultWeightConfig returns the §6 weight-catalog defaults.
func DefaultWeightConfig() WeightConfig {
	return WeightConfig{
		WeekdayWish:        200,
		ShiftWish:          100,
		HolidayPattern:     200,
		WorkPattern:        200,
		ShiftPattern:       200,
		Pairing:            100,
		Separation:         200,
		CustomPreset:       200,
		Balance:            300,
		PairOverlap:        -333,
		TriplePairOverlap:  -10000,
		SameShiftTriple:    -10000,
		DayOnlyConsecutive: 100,
		UnsetPenalty:       -10000,
	}
}

// Load reads configuration from the environment, falling back to
// defaults.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "rostergen"),
			Env:      getEnv("APP_ENV", "development"),
			Port:     getEnvInt("APP_PORT", 7012),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		Solver: SolverConfig{
			DefaultSearchTime: getEnvDuration("SOLVER_SEARCH_TIME", 30*time.Second),
			DefaultMode:       getEnv("SOLVER_MODE", "turbo"),
			MaxWorkers:        getEnvInt("SOLVER_MAX_WORKERS", 12),
			PollInterval:      getEnvDuration("SOLVER_POLL_INTERVAL", 100*time.Millisecond),
		},
		Weight: DefaultWeightConfig(),
	}

	w := &cfg.Weight
	w.WeekdayWish = getEnvInt("WEIGHT_WEEKDAY_WISH", w.WeekdayWish)
	w.ShiftWish = getEnvInt("WEIGHT_SHIFT_WISH", w.ShiftWish)
	w.HolidayPattern = getEnvInt("WEIGHT_HOLIDAY_PATTERN", w.HolidayPattern)
	w.WorkPattern = getEnvInt("WEIGHT_WORK_PATTERN", w.WorkPattern)
	w.ShiftPattern = getEnvInt("WEIGHT_SHIFT_PATTERN", w.ShiftPattern)
	w.Pairing = getEnvInt("WEIGHT_PAIRING", w.Pairing)
	w.Separation = getEnvInt("WEIGHT_SEPARATION", w.Separation)
	w.CustomPreset = getEnvInt("WEIGHT_CUSTOM_PRESET", w.CustomPreset)
	w.Balance = getEnvInt("WEIGHT_BALANCE", w.Balance)
	w.PairOverlap = getEnvInt("WEIGHT_PAIR_OVERLAP", w.PairOverlap)
	w.TriplePairOverlap = getEnvInt("WEIGHT_TRIPLE_PAIR_OVERLAP", w.TriplePairOverlap)
	w.SameShiftTriple = getEnvInt("WEIGHT_SAME_SHIFT_TRIPLE", w.SameShiftTriple)
	w.DayOnlyConsecutive = getEnvInt("WEIGHT_DAY_ONLY_CONSECUTIVE", w.DayOnlyConsecutive)
	w.UnsetPenalty = getEnvInt("WEIGHT_UNSET_PENALTY", w.UnsetPenalty)

	return cfg, nil
}

// IsDevelopment reports whether the app is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction reports whether the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
