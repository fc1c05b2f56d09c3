package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/GoCodeAlone/fibonacci/app"
	"github.com/GoCodeAlone/fibonacci/feeders"
	"github.com/GoCodeAlone/fibonacci/modules/cache"
	"github.com/GoCodeAlone/fibonacci/modules/computer"
	"github.com/GoCodeAlone/fibonacci/modules/configwatcher"
	"github.com/GoCodeAlone/fibonacci/modules/eventlogger"
	"github.com/GoCodeAlone/fibonacci/modules/httpapi"
	"github.com/GoCodeAlone/fibonacci/modules/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// DefaultEnvPrefix prefixes environment overrides, e.g. FIB_HTTPAPI_ADDRESS.
const DefaultEnvPrefix = "FIB"

// ErrUnsupportedConfigFormat is returned for config files other than YAML,
// TOML or JSON.
var ErrUnsupportedConfigFormat = errors.New("unsupported config file format")

// NewServeCommand creates the serve command
func NewServeCommand(opts *rootOptions) *cobra.Command {
	var (
		configPath string
		envFile    string
		envPrefix  string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve Fibonacci numbers over HTTP",
		Long: `Start the HTTP API with the cache, warm-up scheduler, config watcher and
event logger. Configuration is read from --config (YAML, TOML or JSON),
then --env-file, then environment variables such as FIB_COMPUTER_STRATEGY.
Changing the computer strategy in the config file takes effect without a
restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			configFeeders, err := newFeeders(configPath, envFile, envPrefix)
			if err != nil {
				return err
			}
			return buildStack(configPath, configFeeders, logger, prometheus.NewRegistry()).application.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (.yaml, .yml, .toml or .json)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Optional .env file with overrides")
	cmd.Flags().StringVar(&envPrefix, "env-prefix", DefaultEnvPrefix, "Prefix of environment overrides")
	return cmd
}

// stack is the assembled service.
type stack struct {
	application *app.StdApplication
	computer    *computer.ComputerModule
	api         *httpapi.HTTPAPIModule
	scheduler   *scheduler.SchedulerModule
	watcher     *configwatcher.ConfigWatcherModule
}

func buildStack(configPath string, configFeeders []app.Feeder, logger *slog.Logger, reg *prometheus.Registry) *stack {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	application := app.NewStdApplication(app.NewStdConfigProvider(&struct{}{}), logger)
	application.SetConfigFeeders(configFeeders...)

	s := &stack{
		application: application,
		computer:    computer.NewModule(computer.WithRegisterer(reg), computer.WithMemoModule(cache.ModuleName)),
		api:         httpapi.NewModule(httpapi.WithGatherer(reg)),
		scheduler:   scheduler.NewModule(),
	}
	var watchPaths []string
	if configPath != "" {
		watchPaths = append(watchPaths, configPath)
	}
	s.watcher = configwatcher.NewModule(watchPaths...)
	s.watcher.OnChange(reloadStrategy(configFeeders, s.computer))

	application.RegisterModule(eventlogger.NewModule())
	application.RegisterModule(cache.NewModule())
	application.RegisterModule(s.computer)
	application.RegisterModule(s.scheduler)
	application.RegisterModule(s.api)
	application.RegisterModule(s.watcher)
	return s
}

// newFeeders returns the file feeder for configPath, if any, then the .env
// feeder, then the environment feeder, so that later sources win.
func newFeeders(configPath, envFile, envPrefix string) ([]app.Feeder, error) {
	var result []app.Feeder
	switch strings.ToLower(filepath.Ext(configPath)) {
	case "":
		if configPath != "" {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfigFormat, configPath)
		}
	case ".yaml", ".yml":
		result = append(result, feeders.NewYamlFeeder(configPath))
	case ".toml":
		result = append(result, feeders.NewTomlFeeder(configPath))
	case ".json":
		result = append(result, feeders.NewJSONFeeder(configPath))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfigFormat, configPath)
	}
	if envFile != "" {
		result = append(result, feeders.NewDotEnvFeeder(envFile, envPrefix))
	}
	return append(result, feeders.NewEnvFeeder(envPrefix)), nil
}

// reloadStrategy re-reads the computer section and applies its strategy.
func reloadStrategy(configFeeders []app.Feeder, module *computer.ComputerModule) configwatcher.ChangeFunc {
	return func(_ context.Context, path string) error {
		cfg := &computer.ComputerConfig{}
		for _, f := range configFeeders {
			if cf, ok := f.(app.ComplexFeeder); ok {
				if err := cf.FeedKey(computer.ModuleName, cfg); err != nil {
					return fmt.Errorf("reload %s: %w", path, err)
				}
			}
		}
		if err := app.ValidateConfig(cfg); err != nil {
			return fmt.Errorf("reload %s: %w", path, err)
		}
		return module.Reconfigure(cfg.Strategy)
	}
}
