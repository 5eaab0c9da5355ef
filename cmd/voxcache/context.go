package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"voxcache/internal/annotation"
	"voxcache/internal/config"
	"voxcache/internal/dataset"
	"voxcache/internal/logging"
	"voxcache/internal/services"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", path, err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logging.NewComponentLogger(logger, "cli")
	})
	return c.logger, c.loggerErr
}

// commandScope tags ctx with a request id so every log line of one
// invocation can be correlated.
func (c *commandContext) commandScope(cmd *cobra.Command) (context.Context, *slog.Logger, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	ctx := services.WithRequestID(cmd.Context(), uuid.NewString())
	return ctx, logging.WithContext(ctx, logger), nil
}

func (c *commandContext) loadStore(logger *slog.Logger) (*annotation.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return annotation.Load(cfg.Paths.AnnotationAsset, logger)
}

func (c *commandContext) openDataset(ctx context.Context, logger *slog.Logger) (*dataset.Dataset, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := c.loadStore(logger)
	if err != nil {
		return nil, err
	}
	return dataset.Open(ctx, dataset.OptionsFromConfig(cfg), store, logger)
}

// withDataset opens a dataset for the duration of fn.
func (c *commandContext) withDataset(cmd *cobra.Command, fn func(context.Context, *slog.Logger, *dataset.Dataset) error) error {
	ctx, logger, err := c.commandScope(cmd)
	if err != nil {
		return err
	}
	ds, err := c.openDataset(ctx, logger)
	if err != nil {
		return err
	}
	defer ds.Close()
	ctx = services.WithBuildID(ctx, ds.BuildID())
	return fn(ctx, logging.WithContext(ctx, logger), ds)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func parseIntArg(name, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", name, value)
	}
	return n, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
