package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Greeting is one catalog entry: the short button label shown in menus and
// the full text delivered on a successful claim.
type Greeting struct {
	Label string `mapstructure:"label" json:"label"`
	Text  string `mapstructure:"text" json:"text"`
}

type ReminderConfig struct {
	Hour     int    `mapstructure:"hour"`
	Minute   int    `mapstructure:"minute"`
	Timezone string `mapstructure:"timezone"`
}

// EventConfig describes the single greeting event: when it starts, how many
// days it runs, the greeting catalog (one entry per day) and the daily
// reminder trigger. Loaded once at startup and immutable afterwards.
type EventConfig struct {
	StartDate string         `mapstructure:"start_date"`
	TotalDays int            `mapstructure:"total_days"`
	Greetings []Greeting     `mapstructure:"greetings"`
	Reminder  ReminderConfig `mapstructure:"reminder"`

	start    time.Time
	location *time.Location
}

// LoadEventConfig reads and validates the event definition from a YAML file.
// Any invalid value aborts startup; nothing is clamped or defaulted.
func LoadEventConfig(path string) (*EventConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read event config: %w", err)
	}

	var cfg EventConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse event config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewEventConfig builds and validates a config directly, without a file.
func NewEventConfig(startDate string, greetings []Greeting, reminder ReminderConfig) (*EventConfig, error) {
	cfg := &EventConfig{
		StartDate: startDate,
		TotalDays: len(greetings),
		Greetings: greetings,
		Reminder:  reminder,
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *EventConfig) validate() error {
	start, err := time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start_date %q: %w", c.StartDate, err)
	}
	c.start = start

	if c.TotalDays <= 0 {
		return fmt.Errorf("total_days must be positive, got %d", c.TotalDays)
	}
	if len(c.Greetings) != c.TotalDays {
		return fmt.Errorf("greeting catalog has %d entries, want %d (one per day)", len(c.Greetings), c.TotalDays)
	}
	for i, g := range c.Greetings {
		if g.Label == "" || g.Text == "" {
			return fmt.Errorf("greeting %d is missing a label or text", i)
		}
	}

	if c.Reminder.Hour < 0 || c.Reminder.Hour > 23 {
		return fmt.Errorf("reminder hour %d outside 0-23", c.Reminder.Hour)
	}
	if c.Reminder.Minute < 0 || c.Reminder.Minute > 59 {
		return fmt.Errorf("reminder minute %d outside 0-59", c.Reminder.Minute)
	}
	loc, err := time.LoadLocation(c.Reminder.Timezone)
	if err != nil {
		return fmt.Errorf("unknown reminder timezone %q: %w", c.Reminder.Timezone, err)
	}
	c.location = loc
	return nil
}

// StartTime returns the first event day at midnight.
func (c *EventConfig) StartTime() time.Time {
	return c.start
}

// Location returns the civil timezone the daily reminder fires in.
func (c *EventConfig) Location() *time.Location {
	return c.location
}
