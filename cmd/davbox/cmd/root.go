package cmd

import (
	"fmt"
	"os"

	"github.com/xxxsen/davbox/config"

	"github.com/spf13/cobra"
)

const (
	defaultConfigFileEnv = "DAVBOX_CONFIG"
)

var cmds []CreateFunc

type Context struct {
	Config *config.Config
}

type CreateFunc func(ctx *Context) *cobra.Command

func register(cr CreateFunc) {
	cmds = append(cmds, cr)
}

// initContext 按顺序尝试配置文件, 使用第一个能解析成功的
func initContext(ctx *Context, cfgs []string) error {
	var lastErr error = fmt.Errorf("no config file provided")
	for _, cfg := range cfgs {
		if len(cfg) == 0 {
			continue
		}
		c, err := config.Parse(cfg)
		if err != nil {
			lastErr = err
			continue
		}
		ctx.Config = c
		return nil
	}
	return fmt.Errorf("no valid config file found, last err:%w", lastErr)
}

func NewRoot() *cobra.Command {
	var configFile string
	ctx := &Context{}
	var rootCmd = &cobra.Command{
		Use:          "davbox",
		Short:        "Personal file storage server with WebDAV access",
		SilenceUsage: true,
	}
	for _, cr := range cmds {
		rootCmd.AddCommand(cr(ctx))
	}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		envConfigFile, _ := os.LookupEnv(defaultConfigFileEnv)
		return initContext(ctx, []string{configFile, envConfigFile, "./config.json", "/etc/davbox/config.json"})
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file")
	return rootCmd
}
