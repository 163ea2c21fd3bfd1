package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yeisme/filedock/pkg/configs"
	"github.com/yeisme/filedock/pkg/internal/jobs"
	"github.com/yeisme/filedock/pkg/internal/service"
	"github.com/yeisme/filedock/pkg/internal/storage"
)

var (
	sweepDryRun bool
	sweepGrace  time.Duration

	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "reconcile the upload directory with file records once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configs.GetConfig()

			mgr, err := storage.Init(cmd.Context())
			if err != nil {
				return err
			}
			defer mgr.Close()

			grace := cfg.Jobs.SweepGrace
			if cmd.Flags().Changed("grace") {
				grace = sweepGrace
			}

			report, err := jobs.NewSweeper(mgr, cfg).Run(cmd.Context(), service.SweepOptions{
				Grace:  grace,
				DryRun: sweepDryRun,
			})
			if err != nil {
				return err
			}

			b, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			fmt.Fprintln(cmd.ErrOrStderr(), report.Summary())

			return nil
		},
	}
)

func registerSweepCommands() {
	sweepCmd.Flags().BoolVar(&sweepDryRun, "dry-run", false, "report orphans without deleting")
	sweepCmd.Flags().DurationVar(&sweepGrace, "grace", configs.DefaultSweepGrace, "skip files modified more recently than this")

	rootCmd.AddCommand(sweepCmd)
}
