package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/prismrgb/prismd/internal/metrics"
	"github.com/prismrgb/prismd/internal/provider"
	"github.com/prismrgb/prismd/internal/sdk"
)

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Re-arm LED control for every discovered device",
		Long: "Discovers devices and cycles LED control off and on for each, " +
			"clearing stuck hardware state after external interference. Best-effort: " +
			"individual failures are ignored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := zerolog.Ctx(ctx)

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			metrics.SetService(cfg.AppName)

			service := provider.NewService(provider.New(sdk.NewNativeBinding()))

			ok, err := service.Rescan(ctx, provider.ScanOptions{ExclusiveAccess: cfg.Scan.ExclusiveAccess})
			if err != nil {
				return err
			}

			if !ok {
				log.Warn().Msg("scan failed, nothing to reset")

				return nil
			}

			service.Reset(ctx)
			log.Info().Int("devices", service.Status().Devices).Msg("led control re-armed")

			return nil
		},
	}
}
