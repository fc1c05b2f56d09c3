package cmd

import (
	"fmt"

	"github.com/GoCodeAlone/fibonacci/app"
	"github.com/GoCodeAlone/fibonacci/modules/cache"
	"github.com/GoCodeAlone/fibonacci/modules/computer"
	"github.com/GoCodeAlone/fibonacci/modules/configwatcher"
	"github.com/GoCodeAlone/fibonacci/modules/eventlogger"
	"github.com/GoCodeAlone/fibonacci/modules/httpapi"
	"github.com/GoCodeAlone/fibonacci/modules/scheduler"
	"github.com/spf13/cobra"
)

// sampleConfig mirrors the sections read by serve.
type sampleConfig struct {
	Cache         cache.CacheConfig             `yaml:"cache" toml:"cache" json:"cache"`
	Computer      computer.ComputerConfig       `yaml:"computer" toml:"computer" json:"computer"`
	ConfigWatcher configwatcher.WatcherConfig   `yaml:"configwatcher" toml:"configwatcher" json:"configwatcher"`
	EventLogger   eventlogger.EventLoggerConfig `yaml:"eventlogger" toml:"eventlogger" json:"eventlogger"`
	HTTPAPI       httpapi.HTTPAPIConfig         `yaml:"httpapi" toml:"httpapi" json:"httpapi"`
	Scheduler     scheduler.SchedulerConfig     `yaml:"scheduler" toml:"scheduler" json:"scheduler"`
}

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Work with configuration files",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	cmd.AddCommand(newConfigSampleCommand())
	return cmd
}

func newConfigSampleCommand() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print a sample config with every default filled in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" {
				if err := app.SaveSampleConfig(&sampleConfig{}, format, output); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sample %s config written to %s\n", format, output)
				return nil
			}
			data, err := app.GenerateSampleConfig(&sampleConfig{}, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (yaml, toml, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}
