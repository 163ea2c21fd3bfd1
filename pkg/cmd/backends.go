package cmd

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/yeisme/filedock/pkg/configs"
	"github.com/yeisme/filedock/pkg/internal/storage/db"
	"github.com/yeisme/filedock/pkg/internal/storage/kv"
	"github.com/yeisme/filedock/pkg/internal/storage/mq"
)

// backendListCmd 构造列出已注册驱动的子命令，key 为选择驱动的配置键.
// 当前生效类型仅由默认值与 FILEDOCK_* 环境变量决定，不读取配置文件.
func backendListCmd(kind, key string, registered func() []string) *cobra.Command {
	c := &cobra.Command{
		Use:     "ls",
		Short:   "list registered " + kind + " drivers",
		Aliases: []string{"list", "l"},
		Run: func(cmd *cobra.Command, _ []string) {
			printBackends(cmd.OutOrStdout(), kind, registered(), configs.NewViper().GetString(key))
		},
	}
	skipConfig(c)

	return c
}

func printBackends(w io.Writer, kind string, names []string, current string) {
	slices.Sort(names)

	fmt.Fprintf(w, "Registered %s drivers:\n", kind)

	for _, n := range names {
		mark := " "
		if n == current {
			mark = "*"
		}

		fmt.Fprintf(w, " %s %s\n", mark, n)
	}
}

func stringsOf[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}

	return out
}

var (
	kvCmd = &cobra.Command{
		Use:   "kv",
		Short: "metadata cache drivers",
	}

	mqCmd = &cobra.Command{
		Use:   "mq",
		Short: "file event queue drivers",
	}
)

func registerBackendCommands() {
	kvCmd.AddCommand(backendListCmd("kv", "kv.type", func() []string {
		return stringsOf(kv.GetRegisteredKVTypes())
	}))
	mqCmd.AddCommand(backendListCmd("mq", "mq.type", func() []string {
		return stringsOf(mq.GetRegisteredMQTypes())
	}))
	dbCmd.AddCommand(backendListCmd("database", "db.type", func() []string {
		return stringsOf(db.GetRegisteredDBTypes())
	}))

	rootCmd.AddCommand(kvCmd, mqCmd)
}
