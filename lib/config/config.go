// Package config loads the bridge's TOML configuration.
//
// Values are fixed for the life of the process: Load applies defaults,
// decodes the file on top of them and validates the result once at
// startup.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Console holds the OSC connection to the lighting console and the shape
// of the commands sent to it.
type Console struct {
	IP          string `toml:"ip"`
	Port        int    `toml:"port"`
	LocalPort   int    `toml:"local_port"`
	Prefix      string `toml:"prefix"`
	ObjectClass string `toml:"object_class"`
	Page        int    `toml:"page"`
	PageOffset  int    `toml:"page_offset"`
}

// Show sizes the channel vector and the scene range.
type Show struct {
	Channels int `toml:"channels"`
	Scenes   int `toml:"scenes"`
}

// API configures the HTTP control surface.
type API struct {
	Bind        string `toml:"bind"`
	AllowOrigin string `toml:"allow_origin"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type XTouch struct {
	Enabled bool   `toml:"enabled"`
	Port    string `toml:"port"`
	XFadeMs int    `toml:"xfade_ms"`
}

type StreamDeck struct {
	Enabled    bool `toml:"enabled"`
	Brightness int  `toml:"brightness"`
	XFadeMs    int  `toml:"xfade_ms"`
}

type Surfaces struct {
	XTouch     XTouch     `toml:"xtouch"`
	StreamDeck StreamDeck `toml:"streamdeck"`
}

// Config is the complete bridge configuration.
type Config struct {
	Console  Console  `toml:"console"`
	Show     Show     `toml:"show"`
	API      API      `toml:"api"`
	Logging  Logging  `toml:"logging"`
	Surfaces Surfaces `toml:"surfaces"`
}

// DefaultConfigPath returns ~/.config/ma3bridge/config.toml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "ma3bridge", "config.toml"), nil
}

// Load reads path (or the default location when path is empty) over the
// defaults. A missing file is only an error when path was given
// explicitly.
func Load(path string) (*Config, string, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return nil, "", err
		}
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := Decode(data, &cfg); err != nil {
			return nil, path, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		path = ""
	default:
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return &cfg, path, nil
}

// Decode parses TOML onto cfg, rejecting unknown keys.
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Config) normalize() {
	c.Console.IP = strings.TrimSpace(c.Console.IP)
	c.Console.ObjectClass = strings.TrimSpace(c.Console.ObjectClass)
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}
