package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"ma3bridge/lib/config"
	"ma3bridge/lib/logging"
)

type commandContext struct {
	configPath string
	logLevel   string
	logFormat  string

	once      sync.Once
	config    *config.Config
	usedPath  string
	configErr error
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.once.Do(func() {
		cfg, path, err := config.Load(strings.TrimSpace(c.configPath))
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevel != "" {
			cfg.Logging.Level = strings.ToLower(c.logLevel)
		}
		if c.logFormat != "" {
			cfg.Logging.Format = strings.ToLower(c.logFormat)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.usedPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(w io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: w,
	})
}
