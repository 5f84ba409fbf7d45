package graph

import (
	"fmt"
	"strings"

	"github.com/detentlabs/detent/pkg/fsm"
)

// Overlay contains dynamic dispatch data to visualize on the diagram.
type Overlay struct {
	Visited []string
	Current string
}

// Mermaid produces a Mermaid state diagram from an introspection snapshot.
// The initial state is marked with the [*] entry arrow and final states
// with the [*] exit arrow. Event names label the edges; auto-transitions
// are labeled "auto". Overlay styles (visited/current) are applied when
// provided.
func Mermaid[S comparable, E comparable](info fsm.Info[S, E], overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")

	// Declare aliases for state names Mermaid cannot use as bare IDs.
	for _, s := range info.States {
		name := fmt.Sprintf("%v", s)
		if safe := sanitizeID(name); safe != name {
			sb.WriteString(fmt.Sprintf("    state \"%s\" as %s\n", name, safe))
		}
	}

	sb.WriteString(fmt.Sprintf("    [*] --> %s\n", sanitizeID(fmt.Sprintf("%v", info.Initial))))

	for _, edge := range info.Transitions {
		from := sanitizeID(fmt.Sprintf("%v", edge.From))
		to := sanitizeID(fmt.Sprintf("%v", edge.To))
		sb.WriteString(fmt.Sprintf("    %s --> %s : %s\n", from, to, edgeLabel(edge)))
	}

	for _, s := range info.FinalStates {
		sb.WriteString(fmt.Sprintf("    %s --> [*]\n", sanitizeID(fmt.Sprintf("%v", s))))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for high-contrast on light backgrounds, regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.Visited {
			safe := sanitizeID(id)
			if safe != "" && !visitedSet[safe] {
				visitedSet[safe] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safe))
			}
		}
		if overlay.Current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeID(overlay.Current)))
		}
	}

	return sb.String()
}

func edgeLabel[S comparable, E comparable](edge fsm.TransitionInfo[S, E]) string {
	label := "auto"
	if edge.HasEvent {
		// Escape double quotes so event values cannot break the diagram.
		label = strings.ReplaceAll(fmt.Sprintf("%v", edge.Event), "\"", "'")
	}
	if edge.Guarded {
		label += " [guarded]"
	}
	return label
}

func sanitizeID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
