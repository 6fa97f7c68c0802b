package main

import (
	"strings"
	"sync"

	"github.com/five82/clipreel/internal/config"
)

// commandContext shares lazily loaded configuration and output-mode flags
// across subcommands.
type commandContext struct {
	configFlag *string
	logLevel   *string
	verbose    *bool
	jsonOutput *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevel *string, verbose, jsonOutput *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		logLevel:   logLevel,
		verbose:    verbose,
		jsonOutput: jsonOutput,
	}
}

// JSONMode returns true when the user passed --json.
func (c *commandContext) JSONMode() bool {
	return c != nil && c.jsonOutput != nil && *c.jsonOutput
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// effectiveLogLevel resolves --log-level/-v against the configured default.
func (c *commandContext) effectiveLogLevel() string {
	if c.verbose != nil && *c.verbose {
		return "debug"
	}
	if c.logLevel != nil && strings.TrimSpace(*c.logLevel) != "" {
		return strings.TrimSpace(*c.logLevel)
	}
	if c.config != nil {
		return c.config.LogLevel
	}
	return "info"
}
