package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	outputFmt   string
	levelFilter string
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "meowlogger",
	Short: "MeowLogger — log ingestion and enrichment",
	Long: `MeowLogger tails growing log files, enriches every line with a detected
severity and matched patterns, keeps running statistics, and stores entries
in a bounded memory buffer or a rotating file. The serve command adds an
HTTP API with a live WebSocket stream.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.meowlogger.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "output format: text, json")
	rootCmd.PersistentFlags().StringVarP(&levelFilter, "level", "l", "", "filter by severity (comma-separated: info,warning,error)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".meowlogger")
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("poll_interval", "100ms")
	viper.SetDefault("storage.backend", "memory")
	viper.SetDefault("storage.path", "meowlogger.ndjson")
	viper.SetDefault("storage.max_size", 10*1024*1024)
	viper.SetDefault("storage.backups", 5)
	viper.SetDefault("memory.capacity", 10000)
	viper.SetDefault("server.port", "8088")

	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}
