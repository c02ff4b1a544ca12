package main

import (
	"strings"

	"github.com/15mga/tempo/loader"
	"github.com/15mga/tempo/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	confPaths []string
	adminAddr string
)

var rootCmd = &cobra.Command{
	Use:           "tempo",
	Short:         "Deferred call and tracked task scheduler",
	Long:          `tempo drives tracked tasks and deferred calls from a fixed-rate frame loop.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&confPaths, "conf", "c", nil,
		"config sources, later ones override earlier ones (local|conf/tempo.yml, http|http://host/tempo.yml, or a bare file path)")
	rootCmd.PersistentFlags().StringVar(&adminAddr, "admin", "", "admin listen address, overrides admin.addr")
	rootCmd.AddCommand(runCmd, statusCmd)
}

// loadConf 默认值 < 配置文件 < TEMPO_* 环境变量 < 命令行
func loadConf() (*Conf, *util.Err) {
	vpr := viper.New()
	if len(confPaths) > 0 {
		v, err := loader.Viper(loader.LocalPaths(confPaths...)...)
		if err != nil {
			return nil, err
		}
		vpr = v
	}
	for k, v := range defaultSettings() {
		vpr.SetDefault(k, v)
	}
	vpr.SetEnvPrefix("TEMPO")
	vpr.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vpr.AutomaticEnv()

	conf := defaultConf()
	err := loader.Decode(vpr, conf)
	if err != nil {
		return nil, err
	}
	if adminAddr != "" {
		conf.Admin.Addr = adminAddr
	}
	if conf.Loop.Tick <= 0 {
		return nil, util.NewErr(util.EcParamsErr, util.M{
			"loop.tick": conf.Loop.Tick.String(),
		})
	}
	return conf, nil
}
