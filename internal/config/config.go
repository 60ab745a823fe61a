package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/tourney-draw/internal/bracket"
	"github.com/AdamBeresnev/tourney-draw/internal/service"
	"github.com/AdamBeresnev/tourney-draw/internal/utils"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config.yaml"

type Config struct {
	DatabasePath string         `yaml:"database_path"`
	Addr         string         `yaml:"addr"`
	Schedule     ScheduleConfig `yaml:"schedule"`
}

type ScheduleConfig struct {
	DayStartHour        int      `yaml:"day_start_hour"`
	DailySlots          int      `yaml:"daily_slots"`
	SlotMinutes         int      `yaml:"slot_minutes"`
	DefaultMatchMinutes int      `yaml:"default_match_minutes"`
	Fields              []string `yaml:"fields"`
	DefaultPoolCount    int      `yaml:"default_pool_count"`
}

func Default() *Config {
	return &Config{
		DatabasePath: "./app.db",
		Addr:         ":8080",
		Schedule: ScheduleConfig{
			DayStartHour:        bracket.DefaultDayStartHour,
			DailySlots:          bracket.DefaultDailySlots,
			SlotMinutes:         bracket.DefaultSlotMinutes,
			DefaultMatchMinutes: 60,
			Fields:              append([]string(nil), bracket.DefaultFields...),
			DefaultPoolCount:    bracket.DefaultPoolCount,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// DRAW_CONFIG (config.yaml when unset, optional), then the environment.
// A .env file, when present, is loaded into the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("DRAW_CONFIG")
	required := path != ""
	if path == "" {
		path = defaultConfigPath
	}

	cfg := Default()
	if err := cfg.loadFile(path, required); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("DEFAULT_MATCH_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DEFAULT_MATCH_MINUTES: %w", err)
		}
		c.Schedule.DefaultMatchMinutes = minutes
	}
	if v := os.Getenv("FIELDS"); v != "" {
		var fields []string
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
		c.Schedule.Fields = fields
	}
	return nil
}

func (c *Config) Validate() error {
	s := c.Schedule
	if s.DayStartHour < 0 || s.DayStartHour > 23 {
		return fmt.Errorf("day_start_hour must be between 0 and 23, got %d", s.DayStartHour)
	}
	if s.DailySlots <= 0 {
		return fmt.Errorf("daily_slots must be positive, got %d", s.DailySlots)
	}
	if s.SlotMinutes <= 0 {
		return fmt.Errorf("slot_minutes must be positive, got %d", s.SlotMinutes)
	}
	if s.DefaultMatchMinutes <= 0 {
		return fmt.Errorf("default_match_minutes must be positive, got %d", s.DefaultMatchMinutes)
	}
	if len(s.Fields) == 0 {
		return errors.New("at least one field is required")
	}
	if s.DefaultPoolCount <= 0 {
		return fmt.Errorf("default_pool_count must be positive, got %d", s.DefaultPoolCount)
	}
	return nil
}

// Settings converts the schedule section into the services' settings.
func (c *Config) Settings() service.Settings {
	return service.Settings{
		Slots: bracket.SlotOptions{
			DayStartHour: utils.Ptr(c.Schedule.DayStartHour),
			DailySlots:   c.Schedule.DailySlots,
			SlotMinutes:  c.Schedule.SlotMinutes,
			Fields:       c.Schedule.Fields,
		},
		MatchMinutes: c.Schedule.DefaultMatchMinutes,
		PoolCount:    c.Schedule.DefaultPoolCount,
	}
}
