package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "tickertalk",
	Short: "tickertalk - conversational stock analysis",
	Long: `tickertalk answers questions about stocks in natural language. A language
model picks an analysis operation (price, SMA, EMA, RSI, MACD, chart,
holders, news), tickertalk runs it on market data and the model explains
the result.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
