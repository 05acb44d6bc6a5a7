package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/prismrgb/prismd/internal/metrics"
	"github.com/prismrgb/prismd/internal/provider"
	"github.com/prismrgb/prismd/internal/sdk"
)

//nolint:gochecknoglobals // cobra command flags
var (
	scanStrict    bool
	scanExclusive bool
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one discovery scan and print the devices found",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := zerolog.Ctx(ctx)

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			metrics.SetService(cfg.AppName)

			opts := scanOptionsFrom(cfg.Scan)
			if cmd.Flags().Changed("strict") {
				opts.Strict = scanStrict
			}

			if cmd.Flags().Changed("exclusive") {
				opts.ExclusiveAccess = scanExclusive
			}

			service := provider.NewService(provider.New(sdk.NewNativeBinding()))

			ok, err := service.Rescan(ctx, opts)
			if err != nil {
				return err
			}

			if !ok {
				log.Warn().Msg("scan failed, no devices published")

				return nil
			}

			devices := service.Devices()
			status := service.Status()

			fmt.Printf("sdk architecture: %s\n", status.LoadedArchitecture)
			fmt.Printf("devices: %d\n", len(devices))

			for _, device := range devices {
				info := device.Info()
				fmt.Printf("  %-12s %-9s layout=%-7s legend=%s leds=%d\n",
					info.Slot, info.Type, info.Layout, info.LegendLayout, device.LEDCount())
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&scanStrict, "strict", false, "Abort the scan on the first slot failure")
	cmd.Flags().BoolVar(&scanExclusive, "exclusive", false, "Request exclusive hardware access")

	return cmd
}
