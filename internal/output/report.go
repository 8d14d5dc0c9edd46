package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tanq16/speedprobe/internal/probe"
)

const reportLabelWidth = 23

func RenderReport(r *probe.TransferReport) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("----- Network Speed Test Report -----") + "\n")
	row := func(label, value string) {
		fmt.Fprintf(&b, "%s: %s\n", FDebug(fmt.Sprintf("%-*s", reportLabelWidth, label)), value)
	}
	row("Tested URL", FDetail(r.SourceURL))
	row("Data Transferred", FDetail(fmt.Sprintf("%.2f MB", r.TotalMegabytes)))
	row("Total Time", FDetail(fmt.Sprintf("%.2f seconds", r.TotalTimeSeconds)))
	row("Average Speed", FDetail(FormatSpeed(r.AverageSpeedMBps)))
	row("Peak Speed", FDetail(FormatSpeed(r.PeakSpeedMBps)))
	if r.TimeTo50Seconds != nil {
		row("Time to 50%", FDetail(fmt.Sprintf("%.2f s", *r.TimeTo50Seconds)))
	}
	if r.TimeTo100Seconds != nil {
		row("Time to 100%", FDetail(fmt.Sprintf("%.2f s", *r.TimeTo100Seconds)))
	}
	if r.CleanupSucceeded {
		row("File Cleanup", FSuccess(StyleSymbols["pass"]+" File deleted after test"))
	} else {
		row("File Cleanup", FWarning(StyleSymbols["warning"]+" File not deleted"))
	}
	b.WriteString(headerStyle.Render(strings.Repeat("-", 39)) + "\n")
	return b.String()
}

func ReportJSON(r *probe.TransferReport) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding report: %w", err)
	}
	return data, nil
}
