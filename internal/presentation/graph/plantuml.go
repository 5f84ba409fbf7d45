package graph

import (
	"fmt"
	"strings"

	"github.com/detentlabs/detent/pkg/fsm"
)

// PlantUML produces a PlantUML state diagram from an introspection
// snapshot, for toolchains that render PlantUML rather than Mermaid.
func PlantUML[S comparable, E comparable](info fsm.Info[S, E]) string {
	var sb strings.Builder
	sb.WriteString("@startuml\n")

	for _, s := range info.States {
		name := fmt.Sprintf("%v", s)
		if safe := sanitizeID(name); safe != name {
			sb.WriteString(fmt.Sprintf("state \"%s\" as %s\n", name, safe))
		}
	}

	sb.WriteString(fmt.Sprintf("[*] --> %s\n", sanitizeID(fmt.Sprintf("%v", info.Initial))))

	for _, edge := range info.Transitions {
		from := sanitizeID(fmt.Sprintf("%v", edge.From))
		to := sanitizeID(fmt.Sprintf("%v", edge.To))
		sb.WriteString(fmt.Sprintf("%s --> %s : %s\n", from, to, edgeLabel(edge)))
	}

	for _, s := range info.FinalStates {
		sb.WriteString(fmt.Sprintf("%s --> [*]\n", sanitizeID(fmt.Sprintf("%v", s))))
	}

	sb.WriteString("@enduml\n")
	return sb.String()
}
