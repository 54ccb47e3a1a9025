package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/studyboost/internal/store"
)

func ToCSV(sessions []store.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Kind", "Start", "End", "Duration (s)", "Duration", "Completed"}); err != nil {
		return err
	}

	for _, s := range sessions {
		endStr := ""
		if s.EndTime != nil {
			endStr = s.EndTime.Local().Format(time.RFC3339)
		}
		completed := "no"
		if s.Completed {
			completed = "yes"
		}

		row := []string{
			s.ID,
			string(s.Kind),
			s.StartTime.Local().Format(time.RFC3339),
			endStr,
			fmt.Sprintf("%d", s.Duration),
			formatDuration(s.Duration),
			completed,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
