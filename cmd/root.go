package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lodisdb/lodis/cmd/bench"
	"github.com/lodisdb/lodis/cmd/repl"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "lodis",
		Short: "embeddable in-memory key-value store",
		Long: fmt.Sprintf(`Lodis (v%s)

An embeddable, Redis-compatible in-memory key-value store written in Go,
built for very high single-process throughput. Supports multiple numbered
databases, per-key expiration and glob-style key enumeration.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of Lodis",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Lodis v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(repl.ReplCmd)
	RootCmd.AddCommand(bench.BenchCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
