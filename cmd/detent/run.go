package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/detentlabs/detent/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the machine interactively",
	Long: `Starts an interactive session against the machine definition: type event
names to fire them from the current state, until a final state is reached.`,
	Run: func(cmd *cobra.Command, args []string) {
		file := definitionPath(cmd, args)
		debug, _ := cmd.Flags().GetBool("debug")
		plain, _ := cmd.Flags().GetBool("plain")
		rawContext, _ := cmd.Flags().GetString("context")

		opts := cli.SessionOptions{
			File:    file,
			Context: rawContext,
			Debug:   debug,
			Plain:   plain,
		}
		if err := cli.RunSession(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("debug", false, "Log engine internals to stderr")
	runCmd.Flags().Bool("plain", false, "Disable the banner and colors")
	runCmd.Flags().StringP("context", "c", "", "Initial context as JSON, merged over the definition's context")

	// Make 'run' the default when no command is provided.
	rootCmd.Run = runCmd.Run
}
