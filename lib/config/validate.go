package config

import (
	"errors"
	"fmt"
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Console.IP == "" {
		errs = append(errs, errors.New("console.ip must be set"))
	}
	if !validPort(c.Console.Port) {
		errs = append(errs, fmt.Errorf("console.port %d out of range", c.Console.Port))
	}
	if c.Console.LocalPort != 0 && !validPort(c.Console.LocalPort) {
		errs = append(errs, fmt.Errorf("console.local_port %d out of range", c.Console.LocalPort))
	}
	if c.Console.ObjectClass == "" {
		errs = append(errs, errors.New("console.object_class must be set"))
	}
	if c.Console.Page < 1 {
		errs = append(errs, fmt.Errorf("console.page must be positive, got %d", c.Console.Page))
	}
	if c.Console.PageOffset < 0 {
		errs = append(errs, fmt.Errorf("console.page_offset must not be negative, got %d", c.Console.PageOffset))
	}
	if c.Show.Channels < 1 {
		errs = append(errs, fmt.Errorf("show.channels must be positive, got %d", c.Show.Channels))
	}
	if c.Show.Scenes < 1 {
		errs = append(errs, fmt.Errorf("show.scenes must be positive, got %d", c.Show.Scenes))
	}
	if c.API.Bind == "" {
		errs = append(errs, errors.New("api.bind must be set"))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format))
	}
	if c.Surfaces.XTouch.XFadeMs < 0 {
		errs = append(errs, errors.New("surfaces.xtouch.xfade_ms must not be negative"))
	}
	if c.Surfaces.StreamDeck.XFadeMs < 0 {
		errs = append(errs, errors.New("surfaces.streamdeck.xfade_ms must not be negative"))
	}
	if b := c.Surfaces.StreamDeck.Brightness; b < 0 || b > 100 {
		errs = append(errs, fmt.Errorf("surfaces.streamdeck.brightness %d out of range [0,100]", b))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}
