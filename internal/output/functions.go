package output

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

func FormatSpeed(mbps float64) string {
	return fmt.Sprintf("%.2f MB/s", mbps)
}

// PrintProgressBar renders a bar for a percentage in 0..100.
func PrintProgressBar(percent, width int) string {
	if width <= 0 {
		width = 30
	}
	percent = max(0, min(percent, 100))
	filled := percent * width / 100
	bar := StyleSymbols["bullet"]
	bar += strings.Repeat(StyleSymbols["hline"], filled)
	if filled < width {
		bar += strings.Repeat(" ", width-filled)
	}
	bar += StyleSymbols["bullet"]
	return debugStyle.Render(fmt.Sprintf("%s %3d%% %s ", bar, percent, StyleSymbols["bullet"]))
}

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // Default fallback width
	}
	return width
}
