package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tanq16/speedprobe/internal/probe"
	"github.com/tanq16/speedprobe/internal/utils"
)

// ConsoleObserver keeps a single progress line up to date on a terminal.
type ConsoleObserver struct {
	w        io.Writer
	width    func() int
	lastLen  int
	rendered bool
}

func NewConsoleObserver(w io.Writer) *ConsoleObserver {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleObserver{w: w, width: getTerminalWidth}
}

func (c *ConsoleObserver) OnProgress(p probe.Progress) {
	barWidth := min(30, max(10, c.width()-75))
	line := fmt.Sprintf("Testing: %s%s %s %s",
		PrintProgressBar(p.Percent, barWidth),
		FDetail(FormatSpeed(p.CurrentSpeedMBps)),
		FDebug(transferredText(p)),
		FDebug(fmt.Sprintf("(%d%% complete)", p.Percent)))
	// pad by visible width; styles and symbols make byte length overshoot
	width := lipgloss.Width(line)
	pad := ""
	if c.lastLen > width {
		pad = strings.Repeat(" ", c.lastLen-width)
	}
	fmt.Fprintf(c.w, "\r%s%s", line, pad)
	c.lastLen = width
	c.rendered = true
}

// Done ends the progress line so later output starts on a fresh line.
func (c *ConsoleObserver) Done() {
	if c.rendered {
		fmt.Fprintln(c.w)
		c.rendered = false
		c.lastLen = 0
	}
}

func transferredText(p probe.Progress) string {
	if p.TotalBytes <= 0 {
		return utils.FormatBytes(p.BytesTransferred)
	}
	return utils.FormatBytes(p.BytesTransferred) + " / " + utils.FormatBytes(p.TotalBytes)
}
