package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/runs"
)

// standaloneAnnotation marks commands that run without a loaded config.
const standaloneAnnotation = "reelsmith/standalone"

func standalone() map[string]string {
	return map[string]string{standaloneAnnotation: "true"}
}

func isStandalone(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[standaloneAnnotation] == "true" {
			return true
		}
	}
	return false
}

// commandContext lazily loads the config and logger shared by subcommands.
type commandContext struct {
	configFlag *string
	config     func() (*config.Config, error)
	logger     func() (*slog.Logger, error)
}

func newCommandContext(configFlag *string) *commandContext {
	c := &commandContext{configFlag: configFlag}
	c.config = sync.OnceValues(func() (*config.Config, error) {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			return nil, err
		}
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, err
		}
		return cfg, nil
	})
	c.logger = sync.OnceValues(func() (*slog.Logger, error) {
		cfg, err := c.config()
		if err != nil {
			return nil, err
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		return logger, nil
	})
	return c
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) { return c.config() }

func (c *commandContext) ensureLogger() (*slog.Logger, error) { return c.logger() }

// withStore opens the run ledger for the duration of fn.
func (c *commandContext) withStore(fn func(*runs.Store) error) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	store, err := runs.Open(cfg)
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()
	return fn(store)
}
