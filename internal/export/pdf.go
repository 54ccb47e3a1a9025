package export

import (
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/sadopc/studyboost/internal/store"
)

// ToPDF writes a productivity report: daily totals for the covered range
// followed by the most recent sessions.
func ToPDF(user *store.User, days []store.StatsDay, sessions []store.Session, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Productivity Report: %s", user.DisplayName))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Daily totals")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 12)
	totalPomodoros := 0
	var totalFocus int64
	for _, d := range days {
		pdf.Cell(0, 8, fmt.Sprintf("  %s   %d pomodoros   focus %s   breaks %s",
			d.Date, d.PomodorosCompleted,
			formatDuration(int(d.TotalFocusSeconds)),
			formatDuration(int(d.TotalBreakSeconds))))
		pdf.Ln(6)
		totalPomodoros += d.PomodorosCompleted
		totalFocus += d.TotalFocusSeconds
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Total: %d pomodoros, %s focused", totalPomodoros, formatDuration(int(totalFocus))))
	pdf.Ln(10)

	if len(sessions) > 0 {
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(0, 10, "Recent sessions")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 12)
		for _, s := range sessions {
			mark := "[ ]"
			if s.Completed {
				mark = "[x]"
			}
			pdf.Cell(0, 8, fmt.Sprintf("  %s %s  %s  %s",
				mark, s.StartTime.Local().Format("2006-01-02 15:04"),
				s.Kind, formatDuration(s.Duration)))
			pdf.Ln(6)
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 10)
	pdf.Cell(0, 8, "Generated "+time.Now().Local().Format("2006-01-02 15:04"))

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf report: %w", err)
	}
	return nil
}
