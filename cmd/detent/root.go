package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "detent",
	Short: "Detent is a declarative state machine dispatch engine",
	Long: `Detent runs declarative state machines: states, events and transition
rules defined in YAML, dispatched against a caller-owned context.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("file", "f", "machine.yaml", "Path to the machine definition")
}

// definitionPath resolves the machine definition file: a positional
// argument wins over the --file flag when the flag was left at its default.
func definitionPath(cmd *cobra.Command, args []string) string {
	file, _ := cmd.Flags().GetString("file")
	if !cmd.Flags().Changed("file") && len(args) > 0 {
		file = args[0]
	}
	return file
}
