package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "contentgw",
		Short:         "Content aggregation gateway with caching, rate limiting and safety scoring",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONTENTGW_CONFIG"), "path to a YAML config file")

	root.AddCommand(newServeCommand(&configPath))
	root.AddCommand(newClassifyCommand())
	return root
}
