package econctl

import (
	"github.com/spf13/cobra"

	"econdash/internal/econd"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务（序列、回测、指标接口）",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Port = port
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return econd.Run(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "覆盖配置中的端口")
	return cmd
}
