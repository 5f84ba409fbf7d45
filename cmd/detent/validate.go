package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/detentlabs/detent/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the machine for consistency",
	Long: `Compiles the definition and reports structural defects: unreachable
states, dangling targets, duplicate unconditional rules and cycles.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Machine is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	file := definitionPath(cmd, args)

	machine, _, err := cli.LoadMachine(file, cli.NewLogger(false))
	if err != nil {
		return err
	}

	v := machine.Validate()
	if !v.OK() {
		for _, e := range v.Errors {
			fmt.Printf("  - %s\n", e)
		}
		return fmt.Errorf("%d problem(s) found", len(v.Errors))
	}
	return nil
}
