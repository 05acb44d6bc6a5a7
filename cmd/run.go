package cmd

import (
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/prismrgb/prismd/internal/adminhttp"
	"github.com/prismrgb/prismd/internal/config"
	"github.com/prismrgb/prismd/internal/locale"
	"github.com/prismrgb/prismd/internal/metrics"
	"github.com/prismrgb/prismd/internal/provider"
	"github.com/prismrgb/prismd/internal/sdk"
	"github.com/prismrgb/prismd/internal/version"
)

// loadConfig resolves the effective configuration: an explicit --config
// path must load, the default path loads when present, and otherwise the
// built-in defaults apply so one-shot commands work without a config file.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath

		if _, err := os.Stat(path); err != nil {
			return config.Default(), nil
		}
	}

	return config.Load(path)
}

func scanOptionsFrom(scanCfg config.ScanConfig) provider.ScanOptions {
	return provider.ScanOptions{
		ExclusiveAccess: scanCfg.ExclusiveAccess,
		Strict:          scanCfg.Strict,
	}
}

// cultureFunc resolves the legend-layout locale, preferring the config
// override (which may change on config reload) over the ambient locale.
func cultureFunc(override *atomic.Value) provider.CultureFunc {
	return func() language.Tag {
		if value, _ := override.Load().(string); value != "" {
			if tag, err := language.Parse(value); err == nil {
				return tag
			}
		}

		return locale.System()
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the prismd device bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := zerolog.Ctx(ctx)

			log.Info().
				Str("version", version.GetVersion()).
				Str("build_time", version.GetBuildTime()).
				Msg("prismd starting")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			metrics.RegisterCollectors()
			metrics.SetService(cfg.AppName)

			var localeOverride atomic.Value
			localeOverride.Store(cfg.Scan.Locale)

			service := provider.NewService(provider.New(
				sdk.NewNativeBinding(),
				provider.WithCultureFunc(cultureFunc(&localeOverride)),
			))

			ok, err := service.Rescan(ctx, scanOptionsFrom(cfg.Scan))
			if err != nil {
				return err
			}

			if !ok {
				log.Warn().Msg("initial device scan failed, provider not ready")
			}

			group, groupCtx := errgroup.WithContext(ctx)

			if cfg.HTTP.Enabled {
				admin := adminhttp.NewServer(&cfg.HTTP, cfg.Scan, service)
				group.Go(func() error { return admin.Start(groupCtx) })
			}

			if cfg.Scan.RescanOnConfigChange && cfg.Path != "" {
				watcher, err := config.NewWatcher()
				if err != nil {
					return err
				}

				path := cfg.Path
				watcher.OnChange(func() {
					reloaded, err := config.Load(path)
					if err != nil {
						log.Warn().Err(err).Msg("config reload failed, keeping previous settings")

						return
					}

					localeOverride.Store(reloaded.Scan.Locale)

					if ok, err := service.Rescan(groupCtx, scanOptionsFrom(reloaded.Scan)); err != nil || !ok {
						log.Warn().Err(err).Msg("rescan after config change failed")

						return
					}

					log.Info().Msg("devices rescanned after config change")
				})
				watcher.Watch(groupCtx, path)
			}

			group.Go(func() error {
				<-groupCtx.Done()

				return nil
			})

			return group.Wait()
		},
	}
}
