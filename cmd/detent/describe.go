package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/detentlabs/detent/internal/cli"
	"github.com/detentlabs/detent/internal/presentation/tui"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Render a report of the machine",
	Long: `Prints a readable report of the machine: states, events, the transition
table and validation findings. The markdown is rendered when stdout is a
terminal and printed raw otherwise, so it pipes cleanly into files.`,
	Run: func(cmd *cobra.Command, args []string) {
		file := definitionPath(cmd, args)

		machine, def, err := cli.LoadMachine(file, cli.NewLogger(false))
		if err != nil {
			fmt.Printf("Error loading machine: %v\n", err)
			os.Exit(1)
		}

		report := tui.Describe(cli.MachineName(def, file), machine.Info(), machine.Validate())

		if term.IsTerminal(int(os.Stdout.Fd())) {
			if out, err := tui.NewRenderer()(report); err == nil {
				fmt.Print(out)
				return
			}
		}
		fmt.Print(report)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
