package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/workbench"
	"pkt.systems/workbench/internal/appconfig"
	"pkt.systems/workbench/schema"
)

func newDoctorCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run workbench diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())

			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			configPath := cfgPath
			if configPath == "" {
				path, err := appconfig.DefaultConfigPath()
				if err != nil {
					return err
				}
				configPath = path
			}
			logger.Info("doctor start", "config", configPath)

			if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
				return fmt.Errorf("doctor state dir: %w", err)
			}
			probe, err := os.CreateTemp(cfg.StateDir, "doctor-*")
			if err != nil {
				return fmt.Errorf("doctor state dir not writable: %w", err)
			}
			_ = probe.Close()
			_ = os.Remove(probe.Name())
			logger.Info("doctor state dir ok", "state_dir", cfg.StateDir)

			// Exercise the preview slot end to end in memory.
			wb, err := workbench.New(workbench.Config{Workbench: cfg.Workbench()}, workbench.Deps{Logger: logger})
			if err != nil {
				return err
			}
			defer func() { _ = wb.Close() }()

			ctx := cmd.Context()
			open, err := wb.OpenResource(ctx, schema.OpenRequest{
				Resource: "/doctor/probe.txt",
				Options:  schema.OpenOptions{Preview: true},
			})
			if err != nil {
				return fmt.Errorf("doctor preview open: %w", err)
			}
			wantKind := schema.KindPreview
			if cfg.Preview.Disabled {
				wantKind = schema.KindPermanent
			}
			if open.Surface.Kind != wantKind {
				return fmt.Errorf("doctor preview open: got %s surface, want %s", open.Surface.Kind, wantKind)
			}
			if !cfg.Preview.Disabled {
				pinned, err := wb.PinSurface(ctx, schema.PinSurfaceRequest{})
				if err != nil {
					return fmt.Errorf("doctor pin: %w", err)
				}
				if pinned.Surface.Kind != schema.KindPermanent {
					return fmt.Errorf("doctor pin: got %s surface", pinned.Surface.Kind)
				}
			}
			logger.Info("doctor preview slot ok", "preview_disabled", cfg.Preview.Disabled)

			logger.Info("doctor ok")
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	return cmd
}
