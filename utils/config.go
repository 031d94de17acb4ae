package utils

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Duration is a time.Duration that unmarshals from a Go duration string ("100ms")
// or an integer number of milliseconds
type Duration struct {
	time.Duration
}

// Ms returns a Duration of n milliseconds
func Ms(n int) Duration {
	return Duration{time.Duration(n) * time.Millisecond}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return errors.Wrapf(err, "[Duration.UnmarshalJSON] failed to parse duration: %+v", s)
		}
		d.Duration = v
		return nil
	}

	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return errors.Wrapf(err, "[Duration.UnmarshalJSON] failed to parse duration: %s", data)
	}
	d.Duration = time.Duration(ms) * time.Millisecond
	return nil
}

// Config holds the configuration for the simulation
type Config struct {
	Rows           int      `json:"rows"`
	Cols           int      `json:"cols"`
	Speed          Duration `json:"speed"`
	MinSpeed       Duration `json:"min_speed"`
	MaxSpeed       Duration `json:"max_speed"`
	SpeedStep      Duration `json:"speed_step"`
	AliveThreshold float64  `json:"alive_threshold"`
	Seed           uint64   `json:"seed"`
	MaxGenerations int      `json:"max_generations"`
	Headless       bool     `json:"headless"`
	LogLevel       string   `json:"log_level"`
	LogFile        string   `json:"log_file"`
}

// DefaultConfig returns the 30x50 board stepping every 100ms
func DefaultConfig() Config {
	return Config{
		Rows:           30,
		Cols:           50,
		Speed:          Ms(100),
		MinSpeed:       Ms(50),
		MaxSpeed:       Ms(1000),
		SpeedStep:      Ms(50),
		AliveThreshold: 0.75,
		Seed:           0, // 0 means seed from the clock
		MaxGenerations: 0,
		Headless:       false,
		LogLevel:       "info",
	}
}

// LoadConfig loads configuration from a JSON file and overlays environment variables
// (including those from a .env file). A missing or malformed file yields the defaults
// plus the error.
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return DefaultConfig(), errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	return config, nil
}

// LoadEnv reads a .env file if one exists and applies the environment to config
func LoadEnv(config Config, filenames ...string) (Config, error) {
	if err := godotenv.Load(filenames...); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return config, errors.Wrap(err, "[LoadEnv] failed to load env file")
	}
	return ApplyEnv(config)
}

// ApplyEnv overlays GOL_* and LOG_* environment variables onto config
func ApplyEnv(config Config) (Config, error) {
	ints := map[string]*int{
		"GOL_ROWS":            &config.Rows,
		"GOL_COLS":            &config.Cols,
		"GOL_MAX_GENERATIONS": &config.MaxGenerations,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return config, errors.Wrapf(err, "[ApplyEnv] failed to parse %s: %+v", key, v)
		}
		*dst = n
	}

	if v := os.Getenv("GOL_SPEED"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return config, errors.Wrapf(err, "[ApplyEnv] failed to parse GOL_SPEED: %+v", v)
		}
		config.Speed = Duration{d}
	}
	if v := os.Getenv("GOL_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return config, errors.Wrapf(err, "[ApplyEnv] failed to parse GOL_SEED: %+v", v)
		}
		config.Seed = seed
	}
	if v := os.Getenv("GOL_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return config, errors.Wrapf(err, "[ApplyEnv] failed to parse GOL_HEADLESS: %+v", v)
		}
		config.Headless = b
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		config.LogFile = v
	}

	return config, nil
}

// Validate checks that the configuration describes a usable simulation
func (c Config) Validate() error {
	switch {
	case c.Rows < 0 || c.Cols < 0:
		return errors.Wrapf(ErrInvalidConfig, "grid size %dx%d is negative", c.Rows, c.Cols)
	case c.MinSpeed.Duration <= 0 || c.MaxSpeed.Duration <= 0 || c.Speed.Duration <= 0:
		return errors.Wrap(ErrInvalidConfig, "speeds must be positive")
	case c.MinSpeed.Duration > c.MaxSpeed.Duration:
		return errors.Wrapf(ErrInvalidConfig, "min speed %s exceeds max speed %s", c.MinSpeed, c.MaxSpeed)
	case c.SpeedStep.Duration < 0:
		return errors.Wrap(ErrInvalidConfig, "speed step must not be negative")
	case c.AliveThreshold < 0 || c.AliveThreshold > 1:
		return errors.Wrapf(ErrInvalidConfig, "alive threshold %v outside [0,1]", c.AliveThreshold)
	case c.MaxGenerations < 0:
		return errors.Wrap(ErrInvalidConfig, "max generations must not be negative")
	}
	return nil
}
