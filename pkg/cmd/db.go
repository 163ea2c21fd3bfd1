package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/filedock/pkg/configs"
	"github.com/yeisme/filedock/pkg/internal/storage/db"
)

var (
	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "Database related commands",
	}

	dbMigrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "create or update the file record tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configs.GetConfig()

			client, err := db.New(cmd.Context(), &cfg.DB, db.Options{Debug: cfg.Server.Debug})
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Migrate(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s database %q migrated\n", cfg.DB.GetDBType(), cfg.DB.Database)

			return nil
		},
	}
)

// registerDBCommands 注册数据库相关命令.
func registerDBCommands() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbMigrateCmd)
}
