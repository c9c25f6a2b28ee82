package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "gotbind",
		Short:         "Drive the got object store through the host binding layer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default .gotbind.toml in the repository)")
	root.PersistentFlags().StringVarP(&a.repoPath, "repo", "C", "", "repository path (default from config, then .)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newReflogCmd(a))
	root.AddCommand(newLogCmd(a))
	root.AddCommand(newShowCmd(a))
	root.AddCommand(newCommitCmd(a))
	root.AddCommand(newVerifyCmd(a))
	root.AddCommand(newStatsCmd(a))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "gotbind "+version)
		},
	}
}
