package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

type ErrorReport struct {
	Name  string
	Error error
	Time  time.Time
}

// Summary tallies the outcome of every job in a run.
type Summary struct {
	mutex     sync.Mutex
	total     int
	succeeded int
	errors    []ErrorReport
}

func NewSummary() *Summary {
	return &Summary{}
}

func (s *Summary) Complete(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.total++
	s.succeeded++
}

func (s *Summary) ReportError(name string, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.total++
	s.errors = append(s.errors, ErrorReport{Name: name, Error: err, Time: time.Now()})
}

func (s *Summary) Failures() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.errors)
}

func (s *Summary) Show(w io.Writer) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	fmt.Fprintln(w)
	succeeded := fmt.Sprintf("Completed %d of %d", s.succeeded, s.total)
	fmt.Fprintln(w, strings.Repeat(" ", 2)+success2Style.Render(succeeded))
	if len(s.errors) > 0 {
		failed := fmt.Sprintf("Failed %d of %d", len(s.errors), s.total)
		fmt.Fprintln(w, strings.Repeat(" ", 2)+errorStyle.Render(failed))
	}
	s.displayErrors(w)
	fmt.Fprintln(w)
}

func (s *Summary) displayErrors(w io.Writer) {
	if len(s.errors) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat(" ", 2)+errorStyle.Bold(true).Render("Errors:"))
	for i, err := range s.errors {
		fmt.Fprintf(w, "%s%s %s %s\n",
			strings.Repeat(" ", 2+2),
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			debugStyle.Render(fmt.Sprintf("[%s]", err.Time.Format("15:04:05"))),
			errorStyle.Render(fmt.Sprintf("Test: %s", err.Name)))
		fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", 2+4), errorStyle.Render(fmt.Sprintf("Error: %v", err.Error)))
	}
}
