package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"n8nexplorer/internal/colors"
	"n8nexplorer/internal/config"
	"n8nexplorer/internal/explorer"
	"n8nexplorer/internal/kvstore"
	"n8nexplorer/internal/logging"
	"n8nexplorer/internal/n8n"
	"n8nexplorer/internal/notifications"
	"n8nexplorer/internal/settings"
	"n8nexplorer/internal/snapshot"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	// httpClient replaces the default transport in tests.
	httpClient n8n.HTTPDoer
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
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

func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, _ := c.ensureConfig()
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			logger, _ = logging.New(logging.Options{Level: "info", Format: "console"})
		}
		c.logger = logger
	})
	return c.logger
}

// services bundles the collaborators of one command invocation.
type services struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      kvstore.Store
	client     *n8n.Client
	settings   *settings.Manager
	colors     *colors.Registry
	snapshots  *snapshot.Cache
	controller *explorer.Controller
	notifier   notifications.Service
	monitor    *notifications.Monitor
}

// withServices opens the state store, wires the explorer and closes the store
// once fn returns.
func (c *commandContext) withServices(fn func(*services) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := c.loggerValue()

	store, err := kvstore.Open(cfg)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer store.Close()

	opts := []n8n.Option{n8n.WithLogger(logger)}
	if c.httpClient != nil {
		opts = append(opts, n8n.WithHTTPClient(c.httpClient))
	}
	client := n8n.New(opts...)
	svc := &services{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		client:    client,
		settings:  settings.New(store, client, cfg, logger),
		colors:    colors.NewRegistry(store, logger),
		snapshots: snapshot.NewCache(store, snapshot.WithLogger(logger)),
	}
	svc.controller, err = explorer.New(explorer.Dependencies{
		Fetcher:     client,
		Credentials: svc.settings,
		Snapshots:   svc.snapshots,
		Timeout:     cfg.FetchTimeout(),
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	svc.notifier = notifications.NewService(cfg)
	instance := svc.settings.Credentials(context.Background()).BaseURL
	svc.monitor = notifications.NewMonitor(svc.notifier, instance, logger)
	return fn(svc)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// commandContextOf returns the cobra context, or Background before Execute.
func commandContextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// describeFetchError turns a classified fetch failure into a CLI error.
func describeFetchError(prefix string, err error) error {
	var fetchErr *n8n.FetchError
	if errors.As(err, &fetchErr) {
		return fmt.Errorf("%s: %s", prefix, fetchErr.Hint())
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
