package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yeisme/filedock/pkg/configs"
)

// redactedKeys 输出时需要隐藏的配置键（按最后一段匹配）.
var redactedKeys = map[string]struct{}{
	"password":   {},
	"jwt_secret": {},
	"secret_key": {},
	"access_key": {},
}

const redacted = "******"

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "inspect the effective configuration",
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the config file in use",
		Run: func(cmd *cobra.Command, _ []string) {
			used := ""
			if v := configs.GetViper(); v != nil {
				used = v.ConfigFileUsed()
			}

			if used == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "(none: defaults and FILEDOCK_* environment only)")
				return
			}

			fmt.Fprintln(cmd.OutOrStdout(), used)
		},
	}

	configShowCmd = &cobra.Command{
		Use:     "show",
		Short:   "print the effective config as JSON with secrets redacted",
		Aliases: []string{"debug"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := configs.GetViper()
			if v == nil {
				return fmt.Errorf("config not initialized")
			}

			if debug {
				v.Debug()
			}

			b, err := json.MarshalIndent(redact(v.AllSettings()), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}

	configCheckCmd = &cobra.Command{
		Use:   "check",
		Short: "validate the config and report the first problem",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// loadConfig 已在 PersistentPreRunE 中完成校验，能走到这里即合法
			cfg := configs.GetConfig()
			fmt.Fprintf(cmd.OutOrStdout(), "ok: base_url=%s segment=%s db=%s kv=%s mq=%s\n",
				cfg.Server.BaseURL, cfg.Upload.RouteSegment, cfg.DB.GetDBType(), cfg.KV.Type, cfg.MQ.Type)

			return nil
		},
	}
)

// redact 递归复制配置树，敏感键的非空值替换为占位符.
func redact(settings map[string]any) map[string]any {
	out := make(map[string]any, len(settings))

	for k, val := range settings {
		switch typed := val.(type) {
		case map[string]any:
			out[k] = redact(typed)
		default:
			if _, ok := redactedKeys[strings.ToLower(k)]; ok && fmt.Sprint(val) != "" {
				out[k] = redacted
				continue
			}

			out[k] = val
		}
	}

	return out
}

func registerConfigsCommands() {
	configCmd.AddCommand(configPathCmd, configShowCmd, configCheckCmd)
	rootCmd.AddCommand(configCmd)
}
