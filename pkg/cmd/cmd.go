// Package cmd contains the command line applications for the project.
package cmd

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yeisme/filedock/pkg/configs"
	"github.com/yeisme/filedock/pkg/log"
)

// skipConfigAnnotation 标记不需要加载配置的命令.
const skipConfigAnnotation = "filedock/skip-config"

var (
	configPath string
	envFile    string
	debug      bool

	rootCmd = &cobra.Command{
		Use:           "filedock",
		Short:         "Role-guarded file upload and storage service",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipConfigAnnotation] == "true" {
				return nil
			}

			return loadConfig()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config (missing file is ignored)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")

	registerServeCommands()
	registerConfigsCommands()
	registerDBCommands()
	registerBackendCommands()
	registerSweepCommands()
	registerVersionCommands()
}

// loadConfig 先加载 dotenv 文件到环境变量，再读取配置文件并初始化日志.
func loadConfig() error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	if err := configs.InitConfig(configPath); err != nil {
		return err
	}

	if debug {
		cfg := configs.GetConfig()
		cfg.Server.Debug = true
	}

	log.Init()

	return nil
}

// skipConfig 标记命令无需加载配置.
func skipConfig(cmds ...*cobra.Command) {
	for _, c := range cmds {
		if c.Annotations == nil {
			c.Annotations = map[string]string{}
		}

		c.Annotations[skipConfigAnnotation] = "true"
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
