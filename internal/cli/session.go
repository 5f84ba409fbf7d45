package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/detentlabs/detent"
	"github.com/detentlabs/detent/internal/presentation/graph"
	"github.com/detentlabs/detent/internal/presentation/tui"
	"github.com/detentlabs/detent/pkg/fsm"
)

// SessionOptions configures one interactive run.
type SessionOptions struct {
	File    string
	Context string // raw JSON, merged over the definition's seed context
	Debug   bool
	Plain   bool // suppress the banner and colors even on a TTY
}

// RunSession drives a definition interactively: it prompts for event names
// on stdin, fires each against the current state and renders the result,
// until the machine reaches a final state or stdin closes.
func RunSession(opts SessionOptions) error {
	logger := NewLogger(opts.Debug)

	machine, def, err := LoadMachine(opts.File, logger)
	if err != nil {
		return err
	}

	ctx, err := seedContext(def.Context, opts.Context)
	if err != nil {
		return err
	}

	pretty := !opts.Plain && term.IsTerminal(int(os.Stdout.Fd()))
	if pretty {
		tui.PrintBanner(detent.Version)
	}

	name := MachineName(def, opts.File)
	state := machine.Initial()
	printSystemMessage("Running '%s' at '%s'. Type an event name, or :help for commands.", name, state)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if machine.IsFinalState(state) {
			printSystemMessage("Reached final state '%s'.", state)
			return nil
		}

		fmt.Print(prompt(state, pretty))
		if !scanner.Scan() {
			// EOF (or a read error): leave quietly, like an explicit :quit.
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			if quit := runCommand(line, machine, name, state, ctx, pretty); quit {
				return nil
			}
			continue
		}

		res := machine.FireWithResult(state, line, ctx)
		renderResult(res, pretty)
		state = res.State
	}
}

func prompt(state string, pretty bool) string {
	if pretty {
		return tui.ColorState(state) + "> "
	}
	return state + "> "
}

func renderResult(res fsm.Result[string], pretty bool) {
	outcome := res.Outcome.String()
	if pretty {
		outcome = tui.ColorOutcome(res.Outcome)
	}

	if res.Transitioned() {
		printSystemMessage("%s -> '%s'", outcome, res.State)
		return
	}
	printSystemMessage("%s: %s", outcome, res.Reason)
}

// runCommand executes one ":" command and reports whether the session
// should end.
func runCommand(line string, machine *Machine, name, state string, ctx map[string]any, pretty bool) bool {
	switch line {
	case ":q", ":quit", ":exit":
		printSystemMessage("Bye!")
		return true

	case ":state":
		printSystemMessage("Current state: '%s'", state)

	case ":events":
		events := fireableEvents(machine, state, ctx)
		if len(events) == 0 {
			printSystemMessage("No events accepted in '%s'.", state)
		} else {
			printSystemMessage("Accepted events: %s", strings.Join(events, ", "))
		}

	case ":ctx", ":context":
		data, err := json.MarshalIndent(ctx, "", "  ")
		if err != nil {
			printSystemMessage("Error rendering context: %v", err)
		} else {
			fmt.Println(string(data))
		}

	case ":info", ":describe":
		report := tui.Describe(name, machine.Info(), machine.Validate())
		if pretty {
			if out, err := tui.NewRenderer()(report); err == nil {
				fmt.Print(out)
				break
			}
		}
		fmt.Print(report)

	case ":graph":
		fmt.Print(graph.Mermaid(machine.Info(), &graph.Overlay{Current: state}))

	case ":validate":
		v := machine.Validate()
		if v.OK() {
			printSystemMessage("Machine is valid.")
		} else {
			for _, e := range v.Errors {
				printSystemMessage("Problem: %s", e)
			}
		}

	case ":help", ":h":
		printHelp()

	default:
		printSystemMessage("Unknown command '%s'. Try :help.", line)
	}
	return false
}

func printHelp() {
	fmt.Print(`Commands:
  :state          show the current state
  :events         list events the current state accepts
  :context        dump the dispatch context as JSON
  :describe       render the machine report
  :graph          print a Mermaid diagram with the current state marked
  :validate       run the static validator
  :quit           leave the session
Anything else is fired as an event against the current state.
`)
}

// fireableEvents probes every configured event against the current state.
// CanFire runs guards but no actions, so probing is safe here.
func fireableEvents(machine *Machine, state string, ctx map[string]any) []string {
	var events []string
	for _, e := range machine.Info().Events {
		if machine.CanFire(state, e, ctx) {
			events = append(events, e)
		}
	}
	return events
}

// seedContext merges the --context JSON overrides over the definition's
// declared context. The definition map is copied so repeated sessions do
// not see each other's mutations.
func seedContext(base map[string]any, raw string) (map[string]any, error) {
	ctx := make(map[string]any, len(base))
	for k, v := range base {
		ctx[k] = v
	}

	if raw != "" {
		var overrides map[string]any
		if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
			return nil, fmt.Errorf("error parsing --context JSON: %w", err)
		}
		for k, v := range overrides {
			ctx[k] = v
		}
	}
	return ctx, nil
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}
