package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gemrelay/gemrelay/internal/config"
	"github.com/gemrelay/gemrelay/internal/version"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:     "gemrelay",
		Short:   "Telegram to Gemini relay bot",
		Version: version.Version,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "path to config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the bot and the status server",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
