package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/username/traffic-heatmap-planner/internal/maps"
	"github.com/username/traffic-heatmap-planner/internal/schedule"
)

const (
	defaultPause = 100 * time.Millisecond
	maxPause     = time.Second
)

// Config represents application configuration
type Config struct {
	Google GoogleConfig `mapstructure:"google"`
	Route  RouteConfig  `mapstructure:"route"`
	Grid   GridConfig   `mapstructure:"grid"`
	Log    LogConfig    `mapstructure:"log"`
}

// GoogleConfig represents Google Maps API access
type GoogleConfig struct {
	APIKey  string  `mapstructure:"api_key" validate:"required"`
	BaseURL string  `mapstructure:"base_url" validate:"omitempty,url"`
	MaxQPS  float64 `mapstructure:"max_qps" validate:"gte=0"`
}

// RouteConfig represents the route being measured
type RouteConfig struct {
	Origin       string `mapstructure:"origin" validate:"required"`
	Destination  string `mapstructure:"destination" validate:"required"`
	Mode         string `mapstructure:"mode" validate:"travel_mode"`
	TrafficModel string `mapstructure:"traffic_model" validate:"traffic_model"`
}

// GridConfig represents the day × time grid
type GridConfig struct {
	Days        []string `mapstructure:"days" validate:"min=1"`
	StartHour   int      `mapstructure:"start_hour" validate:"gte=0,lte=23"`
	EndHour     int      `mapstructure:"end_hour" validate:"gte=0,lte=23"`
	StepMinutes int      `mapstructure:"step_minutes" validate:"gt=0,lte=1440"`
	Timezone    string   `mapstructure:"timezone" validate:"required"`
	Pause       string   `mapstructure:"pause"` // Go duration between API calls, e.g. "100ms"
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load loads configuration from file, environment and defaults.
// A missing file is only an error when configPath is given explicitly.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.traffic-heatmap")
		v.AddConfigPath("/etc/traffic-heatmap")
	}

	// GRID_START_HOUR overrides grid.start_hour and so on
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("google.api_key", "GOOGLE_MAPS_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.base_url", "")
	v.SetDefault("google.max_qps", 0)

	v.SetDefault("route.origin", "San Francisco, CA")
	v.SetDefault("route.destination", "San Jose, CA")
	v.SetDefault("route.mode", "driving")
	v.SetDefault("route.traffic_model", "best_guess")

	v.SetDefault("grid.days", []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"})
	v.SetDefault("grid.start_hour", 7)
	v.SetDefault("grid.end_hour", 19)
	v.SetDefault("grid.step_minutes", 60)
	v.SetDefault("grid.timezone", "America/Los_Angeles")
	v.SetDefault("grid.pause", defaultPause.String())

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validateStruct(c, ""); err != nil {
		return err
	}
	return c.Grid.Validate()
}

// Validate checks the grid alone, for commands that never call the API
func (g *GridConfig) Validate() error {
	if err := validateStruct(g, "grid"); err != nil {
		return err
	}

	// The grid builder does not re-check its range
	if g.EndHour <= g.StartHour {
		return fmt.Errorf("grid.end_hour (%d) must be after grid.start_hour (%d)", g.EndHour, g.StartHour)
	}

	if _, err := g.Weekdays(); err != nil {
		return err
	}

	if _, err := schedule.LoadLocation(g.Timezone); err != nil {
		return fmt.Errorf("grid.timezone: %w", err)
	}

	pause, err := parsePause(g.Pause)
	if err != nil {
		return fmt.Errorf("grid.pause: %w", err)
	}
	if pause < 0 || pause > maxPause {
		return fmt.Errorf("grid.pause must be between 0 and %s, got %s", maxPause, pause)
	}

	return nil
}

// Weekdays parses the configured days, keeping their order
func (g *GridConfig) Weekdays() ([]schedule.Weekday, error) {
	if len(g.Days) == 0 {
		return nil, fmt.Errorf("grid.days: %w: no days selected", schedule.ErrInvalidInput)
	}
	days, err := schedule.ParseWeekdays(g.Days)
	if err != nil {
		return nil, fmt.Errorf("grid.days: %w", err)
	}
	return days, nil
}

// Slots returns the time slots of the configured hour range
func (g *GridConfig) Slots() []schedule.TimeSlot {
	return schedule.BuildSlots(g.StartHour, g.EndHour, g.StepMinutes)
}

// GetPause returns the pause between API calls
func (g *GridConfig) GetPause() time.Duration {
	pause, err := parsePause(g.Pause)
	if err != nil {
		return defaultPause
	}
	return pause
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Google.APIKey = os.ExpandEnv(c.Google.APIKey)
	c.Route.Origin = os.ExpandEnv(c.Route.Origin)
	c.Route.Destination = os.ExpandEnv(c.Route.Destination)
}

func parsePause(s string) (time.Duration, error) {
	if s == "" {
		return defaultPause, nil
	}
	return time.ParseDuration(s)
}

// validateStruct runs the struct tags, naming fields by their config keys
func validateStruct(s interface{}, prefix string) error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
	})
	_ = validate.RegisterValidation("travel_mode", func(fl validator.FieldLevel) bool {
		return maps.ValidMode(fl.Field().String())
	})
	_ = validate.RegisterValidation("traffic_model", func(fl validator.FieldLevel) bool {
		return maps.ValidTrafficModel(fl.Field().String())
	})

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		// Namespace is "Config.grid.step_minutes"; drop the root type
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		if prefix != "" {
			field = prefix + "." + field
		}
		msg := fmt.Sprintf("%s failed '%s'", field, fe.Tag())
		if fe.Param() != "" {
			msg += fmt.Sprintf(" (%s)", fe.Param())
		}
		messages = append(messages, msg)
	}
	return errors.New("invalid config: " + strings.Join(messages, ", "))
}
