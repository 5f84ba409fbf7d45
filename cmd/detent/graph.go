package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/detentlabs/detent/internal/cli"
	"github.com/detentlabs/detent/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the machine graph visualization",
	Long: `Compiles the definition and outputs a state diagram of its transitions.
Guarded edges are marked and auto-transitions appear without an event label.`,
	Run: func(cmd *cobra.Command, args []string) {
		file := definitionPath(cmd, args)
		format, _ := cmd.Flags().GetString("format")

		machine, _, err := cli.LoadMachine(file, cli.NewLogger(false))
		if err != nil {
			fmt.Printf("Error loading machine: %v\n", err)
			os.Exit(1)
		}

		switch format {
		case "mermaid":
			fmt.Print(graph.Mermaid(machine.Info(), nil))
		case "plantuml":
			fmt.Print(graph.PlantUML(machine.Info()))
		default:
			fmt.Printf("Unknown format: %s. Supported: mermaid, plantuml\n", format)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("format", "mermaid", "Diagram format: 'mermaid' or 'plantuml'")
}
