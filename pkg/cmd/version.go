package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/yeisme/filedock/pkg/configs"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "filedock %s (%s %s/%s)\n", configs.AppVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func registerVersionCommands() {
	skipConfig(versionCmd)
	rootCmd.AddCommand(versionCmd)
}
