// Package econctl implements the econdash command line.
package econctl

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"econdash/config"
	"econdash/internal/logging"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "econdash",
		Short:         "Macroeconomic series server and forecast backtester",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "配置文件路径(YAML格式)，默认优先使用 ./config.yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "输出调试日志")

	root.AddCommand(
		newServeCmd(opts),
		newBacktestCmd(opts),
		newSeriesCmd(opts),
		newIndicatorsCmd(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(version string, args []string) int {
	cmd := NewRootCmd(version)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		return 1
	}
	return 0
}

// load resolves the config path, reads the config and builds the logger.
func (o *rootOptions) load() (*config.Config, *zap.Logger, error) {
	path := o.configPath
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	cfg, err := config.GetConfig(path)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(o.verbose)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
