package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/detentlabs/detent/internal/cli"
	"github.com/detentlabs/detent/pkg/scenario"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run scenario files against the machine",
	Long: `Loads a scenario document and fires its scripted events against the
machine, checking each step's expected state, outcome and reason. Exits
non-zero when any scenario fails, so it slots into CI pipelines.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		scenariosPath, _ := cmd.Flags().GetString("scenarios")
		if !cmd.Flags().Changed("scenarios") && len(args) > 0 {
			scenariosPath = args[0]
		}
		debug, _ := cmd.Flags().GetBool("debug")

		if err := runScenarios(file, scenariosPath, debug); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().StringP("scenarios", "s", "scenarios.yaml", "Path to the scenario document")
	testCmd.Flags().Bool("debug", false, "Log each dispatch to stderr")
}

func runScenarios(file, scenariosPath string, debug bool) error {
	logger := cli.NewLogger(debug)

	machine, _, err := cli.LoadMachine(file, logger)
	if err != nil {
		return err
	}

	doc, err := scenario.Load(scenariosPath)
	if err != nil {
		return err
	}

	runner := scenario.NewRunner(machine, machine.Initial(), scenario.WithLogger(logger))
	reports := runner.RunAll(doc)

	failed := 0
	for _, rep := range reports {
		status := "PASS"
		if !rep.Passed {
			status = "FAIL"
			failed++
		}
		fmt.Printf("%s  %s (%d steps, ended at '%s')\n", status, rep.Scenario, len(rep.Steps), rep.Final)
		if !rep.Passed {
			for _, step := range rep.Steps {
				if !step.Passed() {
					fmt.Printf("      step %d [%s]: %s\n", step.Index, step.Event, step.Failure)
				}
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(reports))
	}
	fmt.Printf("All %d scenarios passed ✅\n", len(reports))
	return nil
}
