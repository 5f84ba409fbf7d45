package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner prints the interactive-mode banner with a vertical gradient.
func PrintBanner(version string) {
	p := termenv.ColorProfile()

	lines := []string{
		`  ____       _             _   `,
		` |  _ \  ___| |_ ___ _ __ | |_ `,
		` | | | |/ _ \ __/ _ \ '_ \| __|`,
		` | |_| |  __/ ||  __/ | | | |_ `,
		` |____/ \___|\__\___|_| |_|\__|`,
	}

	colors := []string{
		"#818cf8",
		"#a78bfa",
		"#c084fc",
		"#e879f9",
		"#f472b6",
	}

	fmt.Println()
	for i, line := range lines {
		fmt.Println(termenv.String(line).Foreground(p.Color(colors[i])))
	}
	fmt.Println()
	fmt.Println(termenv.String(fmt.Sprintf("  state machine runtime %s", version)).Foreground(p.Color("#9ca3af")).Italic())
	fmt.Println(termenv.String(`  type an event name to fire it, ":help" for commands`).Foreground(p.Color("#6b7280")))
	fmt.Println()
}
