package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/utakatalp/cfb-rankings/internal/league"
)

// Config holds everything a rating run needs: where the games come from,
// which slice of the season to rate and how to rate it.
type Config struct {
	DB struct {
		Driver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
		URL    string `env:"DATABASE_URL"`
	}
	Season struct {
		Year        int    `env:"SEASON"       envDefault:"2024"`
		Type        string `env:"SEASON_TYPE"  envDefault:"regular"`
		Week        int    `env:"WEEK"         envDefault:"0"`
		Conference  string `env:"CONFERENCE"`
		TopDivision string `env:"TOP_DIVISION" envDefault:"fbs"`
	}
	Rating struct {
		Iterations         int     `env:"ITERATIONS"                   envDefault:"20"`
		Tolerance          float64 `env:"TOLERANCE"                    envDefault:"0.01"`
		WinLoss            float64 `env:"FORMULA_WIN_LOSS"             envDefault:"1.0"`
		OneScore           float64 `env:"FORMULA_ONE_SCORE"            envDefault:"1.0"`
		TwoScore           float64 `env:"FORMULA_TWO_SCORE"            envDefault:"1.3"`
		ThreeScore         float64 `env:"FORMULA_THREE_SCORE"          envDefault:"1.5"`
		StrengthOfSchedule float64 `env:"FORMULA_STRENGTH_OF_SCHEDULE" envDefault:"1.0"`
		OneScoreMargin     int     `env:"FORMULA_ONE_SCORE_MARGIN"     envDefault:"8"`
		TwoScoreMargin     int     `env:"FORMULA_TWO_SCORE_MARGIN"     envDefault:"16"`
	}
	Output struct {
		TopN        int    `env:"TOP_N"        envDefault:"25"`
		MetricsFile string `env:"METRICS_FILE"`
		LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`
	}
}

// Load reads a .env file when present, then the environment. Variables
// that are set but malformed are reported rather than defaulted.
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.DB.Driver = getEnv("DATABASE_DRIVER", "postgres")
	cfg.DB.URL = getEnv("DATABASE_URL", "")

	cfg.Season.Type = getEnv("SEASON_TYPE", "regular")
	cfg.Season.Conference = getEnv("CONFERENCE", "")
	cfg.Season.TopDivision = getEnv("TOP_DIVISION", "fbs")

	cfg.Output.MetricsFile = getEnv("METRICS_FILE", "")
	cfg.Output.LogLevel = getEnv("LOG_LEVEL", "info")

	def := league.DefaultFormula()
	conv := league.DefaultConvergence()

	ints := []struct {
		key      string
		dst      *int
		fallback int
	}{
		{"SEASON", &cfg.Season.Year, 2024},
		{"WEEK", &cfg.Season.Week, 0},
		{"ITERATIONS", &cfg.Rating.Iterations, conv.Iterations},
		{"FORMULA_ONE_SCORE_MARGIN", &cfg.Rating.OneScoreMargin, def.OneScoreMargin},
		{"FORMULA_TWO_SCORE_MARGIN", &cfg.Rating.TwoScoreMargin, def.TwoScoreMargin},
		{"TOP_N", &cfg.Output.TopN, 25},
	}
	for _, v := range ints {
		n, err := getEnvAsInt(v.key, v.fallback)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", v.key, err)
		}
		*v.dst = n
	}

	floats := []struct {
		key      string
		dst      *float64
		fallback float64
	}{
		{"TOLERANCE", &cfg.Rating.Tolerance, conv.Tolerance},
		{"FORMULA_WIN_LOSS", &cfg.Rating.WinLoss, def.WinLoss},
		{"FORMULA_ONE_SCORE", &cfg.Rating.OneScore, def.OneScore},
		{"FORMULA_TWO_SCORE", &cfg.Rating.TwoScore, def.TwoScore},
		{"FORMULA_THREE_SCORE", &cfg.Rating.ThreeScore, def.ThreeScore},
		{"FORMULA_STRENGTH_OF_SCHEDULE", &cfg.Rating.StrengthOfSchedule, def.StrengthOfSchedule},
	}
	for _, v := range floats {
		f, err := getEnvAsFloat(v.key, v.fallback)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", v.key, err)
		}
		*v.dst = f
	}

	return cfg, nil
}

// Formula returns the configured rating formula.
func (c *Config) Formula() league.Formula {
	return league.Formula{
		WinLoss:            c.Rating.WinLoss,
		OneScore:           c.Rating.OneScore,
		TwoScore:           c.Rating.TwoScore,
		ThreeScore:         c.Rating.ThreeScore,
		StrengthOfSchedule: c.Rating.StrengthOfSchedule,
		OneScoreMargin:     c.Rating.OneScoreMargin,
		TwoScoreMargin:     c.Rating.TwoScoreMargin,
	}
}

// Convergence returns the configured iteration bounds.
func (c *Config) Convergence() league.Convergence {
	return league.Convergence{
		Iterations: c.Rating.Iterations,
		Tolerance:  c.Rating.Tolerance,
	}
}

// Helper function to get an environment variable or return a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback, fmt.Errorf("env var %s: expected integer, got '%s'", key, valueStr)
	}
	return value, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return fallback, fmt.Errorf("env var %s: expected number, got '%s'", key, valueStr)
	}
	return value, nil
}
