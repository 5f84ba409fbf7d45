package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"

	"github.com/detentlabs/detent/pkg/fsm"
)

// Describe builds a markdown report of a machine definition, suitable for
// rendering with NewRenderer or printing as-is.
func Describe(name string, info fsm.Info[string, string], validation fsm.ValidationResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", name)
	fmt.Fprintf(&sb, "Initial state: `%s`\n\n", info.Initial)

	sb.WriteString("## States\n\n")
	sb.WriteString("| State | Final |\n")
	sb.WriteString("|-------|-------|\n")
	for _, s := range info.States {
		marker := ""
		if info.Final(s) {
			marker = "yes"
		}
		fmt.Fprintf(&sb, "| `%s` | %s |\n", s, marker)
	}
	sb.WriteString("\n")

	if len(info.Events) > 0 {
		sb.WriteString("## Events\n\n")
		for _, e := range info.Events {
			fmt.Fprintf(&sb, "- `%s`\n", e)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Transitions\n\n")
	if len(info.Transitions) == 0 {
		sb.WriteString("_none_\n\n")
	} else {
		sb.WriteString("| From | Event | To | Guarded |\n")
		sb.WriteString("|------|-------|----|---------|\n")
		for _, t := range info.Transitions {
			event := "(auto)"
			if t.HasEvent {
				event = fmt.Sprintf("`%s`", t.Event)
			}
			guard := ""
			if t.Guarded {
				guard = "yes"
			}
			fmt.Fprintf(&sb, "| `%s` | %s | `%s` | %s |\n", t.From, event, t.To, guard)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Validation\n\n")
	if validation.OK() {
		sb.WriteString("All checks passed.\n")
	} else {
		for _, e := range validation.Errors {
			fmt.Fprintf(&sb, "- %s\n", e)
		}
	}

	return sb.String()
}

// ColorOutcome renders a dispatch outcome with a severity color.
func ColorOutcome(o fsm.Outcome) string {
	p := termenv.ColorProfile()
	s := termenv.String(o.String())
	switch o {
	case fsm.Transitioned:
		return s.Foreground(p.Color("#34d399")).String()
	case fsm.Ignored:
		return s.Foreground(p.Color("#fbbf24")).String()
	default:
		return s.Foreground(p.Color("#f87171")).String()
	}
}

// ColorState renders a state name for the interactive prompt.
func ColorState(state string) string {
	p := termenv.ColorProfile()
	return termenv.String(state).Foreground(p.Color("#818cf8")).Bold().String()
}
