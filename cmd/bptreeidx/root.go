package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "bptreeidx",
	Short: "Build, scan, and inspect disk-resident B+Tree secondary indexes.",
	Long: `bptreeidx manages single-attribute B+Tree secondary indexes over a
fixed-width integer column of a relational file: build loads one from a
relation file, scan runs a low..high range query, inspect dumps an open
index's meta page.`,
}

// Execute runs the root command, reporting any error to stderr.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bptreeidx: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "bptreeidx.yaml", "path to the YAML config file")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(inspectCmd)
}

func main() {
	Execute()
}
