// Package config loads the persistent settings stored at
// <profileDir>/transcript.toml, layered with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/miosa/osa-transcript/style"
	"github.com/miosa/osa-transcript/ui/transcript"
)

// Filename is the config file name inside the profile directory.
const Filename = "transcript.toml"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds persistent settings. Durations are whole milliseconds so the
// file stays hand-editable.
type Config struct {
	Theme              string  `toml:"theme"`
	MaxVisibleMessages int     `toml:"max_visible_messages"`
	SlackRows          int     `toml:"slack_rows"`
	ExtensionThreshold float64 `toml:"extension_threshold"`
	HysteresisRows     int     `toml:"hysteresis_rows"`
	WheelStep          int     `toml:"wheel_step"`
	CollapseMs         int     `toml:"collapse_ms"`
	DragDebounceMs     int     `toml:"drag_debounce_ms"`
	KeyboardSettleMs   int     `toml:"keyboard_settle_ms"`
	ScrollSettleMs     int     `toml:"scroll_settle_ms"`
	AnimatedScroll     bool    `toml:"animated_scroll"`

	// TokensPerSecond paces the demo feed.
	TokensPerSecond float64 `toml:"tokens_per_second"`

	LogFile string `toml:"log_file"`
	Debug   bool   `toml:"debug"`
}

// Default returns the stock settings.
func Default() Config {
	tc := transcript.DefaultConfig()
	return Config{
		Theme:              "dark",
		MaxVisibleMessages: tc.MaxVisibleMessages,
		SlackRows:          tc.Slack,
		ExtensionThreshold: tc.ExtensionThreshold,
		HysteresisRows:     tc.ExtensionHysteresis,
		WheelStep:          tc.WheelStep,
		CollapseMs:         int(tc.CollapseDuration / time.Millisecond),
		DragDebounceMs:     int(tc.DragDebounce / time.Millisecond),
		KeyboardSettleMs:   int(tc.KeyboardSettle / time.Millisecond),
		ScrollSettleMs:     int(tc.ScrollSettle / time.Millisecond),
		AnimatedScroll:     tc.AnimatedScroll,
		TokensPerSecond:    40,
	}
}

// DefaultDir returns ~/.osa.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".osa"
	}
	return filepath.Join(home, ".osa")
}

// DefaultPath returns ~/.osa/transcript.toml.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), Filename)
}

// Load reads the file at path over the defaults and applies environment
// overrides. A missing file is not an error. When validation fails the
// offending fields are reset to their defaults and the returned error wraps
// ErrInvalid; the returned Config is always usable.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Default(), fmt.Errorf("decode %s: %w", path, err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg.clamped(), err
	}
	return cfg, nil
}

// LoadEnvFiles seeds the process environment from .env files. Files that
// do not exist are skipped; variables already set win.
func LoadEnvFiles(files ...string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from OSA_THEME, OSA_MAX_VISIBLE, OSA_LOG and
// OSA_DEBUG.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("OSA_THEME"); v != "" {
		c.Theme = v
	}
	if v := os.Getenv("OSA_MAX_VISIBLE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxVisibleMessages = n
		}
	}
	if v := os.Getenv("OSA_LOG"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("OSA_DEBUG"); v != "" {
		c.Debug = v == "1" || strings.EqualFold(v, "true")
	}
}

// Validate reports every out-of-range field.
func (c Config) Validate() error {
	var errs []error
	bad := func(field string, v any) {
		errs = append(errs, fmt.Errorf("%w: %s = %v", ErrInvalid, field, v))
	}
	if _, ok := style.Themes[c.Theme]; !ok {
		bad("theme", c.Theme)
	}
	if c.MaxVisibleMessages <= 0 {
		bad("max_visible_messages", c.MaxVisibleMessages)
	}
	if c.SlackRows < 0 {
		bad("slack_rows", c.SlackRows)
	}
	if c.ExtensionThreshold <= 0 || c.ExtensionThreshold > 1 {
		bad("extension_threshold", c.ExtensionThreshold)
	}
	if c.HysteresisRows < 0 {
		bad("hysteresis_rows", c.HysteresisRows)
	}
	if c.WheelStep <= 0 {
		bad("wheel_step", c.WheelStep)
	}
	if c.CollapseMs < 0 {
		bad("collapse_ms", c.CollapseMs)
	}
	if c.DragDebounceMs <= 0 {
		bad("drag_debounce_ms", c.DragDebounceMs)
	}
	if c.KeyboardSettleMs <= 0 {
		bad("keyboard_settle_ms", c.KeyboardSettleMs)
	}
	if c.ScrollSettleMs <= 0 {
		bad("scroll_settle_ms", c.ScrollSettleMs)
	}
	if c.TokensPerSecond <= 0 {
		bad("tokens_per_second", c.TokensPerSecond)
	}
	return errors.Join(errs...)
}

// clamped resets invalid fields to their defaults.
func (c Config) clamped() Config {
	d := Default()
	if _, ok := style.Themes[c.Theme]; !ok {
		c.Theme = d.Theme
	}
	if c.MaxVisibleMessages <= 0 {
		c.MaxVisibleMessages = d.MaxVisibleMessages
	}
	if c.SlackRows < 0 {
		c.SlackRows = d.SlackRows
	}
	if c.ExtensionThreshold <= 0 || c.ExtensionThreshold > 1 {
		c.ExtensionThreshold = d.ExtensionThreshold
	}
	if c.HysteresisRows < 0 {
		c.HysteresisRows = d.HysteresisRows
	}
	if c.WheelStep <= 0 {
		c.WheelStep = d.WheelStep
	}
	if c.CollapseMs < 0 {
		c.CollapseMs = d.CollapseMs
	}
	if c.DragDebounceMs <= 0 {
		c.DragDebounceMs = d.DragDebounceMs
	}
	if c.KeyboardSettleMs <= 0 {
		c.KeyboardSettleMs = d.KeyboardSettleMs
	}
	if c.ScrollSettleMs <= 0 {
		c.ScrollSettleMs = d.ScrollSettleMs
	}
	if c.TokensPerSecond <= 0 {
		c.TokensPerSecond = d.TokensPerSecond
	}
	return c
}

// ToTranscript converts to the renderer's settings object.
func (c Config) ToTranscript() transcript.Config {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	return transcript.Config{
		MaxVisibleMessages:  c.MaxVisibleMessages,
		Slack:               c.SlackRows,
		ExtensionThreshold:  c.ExtensionThreshold,
		ExtensionHysteresis: c.HysteresisRows,
		WheelStep:           c.WheelStep,
		CollapseDuration:    ms(c.CollapseMs),
		DragDebounce:        ms(c.DragDebounceMs),
		KeyboardSettle:      ms(c.KeyboardSettleMs),
		ScrollSettle:        ms(c.ScrollSettleMs),
		AnimatedScroll:      c.AnimatedScroll,
	}
}

// Save writes cfg to path atomically: a temp file in the same directory is
// synced and renamed over the target.
func Save(path string, cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.CreateTemp(dir, ".transcript-*.toml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	ok := false
	defer func() {
		if !ok {
			f.Close()
			os.Remove(tmp)
		}
	}()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync config: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	ok = true
	return nil
}
