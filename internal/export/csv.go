// Package export turns stored assessment results into files: a flat CSV of
// every answer, and a per-assessment HTML report with the resolved guidance.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/harrison/dommx/internal/filelock"
	"github.com/harrison/dommx/internal/store"
)

// csvHeader is the column order of the results export.
var csvHeader = []string{"user_id", "project_id", "domain_key", "question_id", "score", "updated_at"}

// EncodeCSV renders the result rows as CSV with a header line.
func EncodeCSV(rows []store.ResultRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.UserID,
			r.ProjectID,
			r.DomainKey,
			r.QuestionID,
			strconv.Itoa(r.Score),
			r.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteCSV writes the result rows to path. The write is atomic and guarded
// by a lock file so concurrent exports do not interleave.
func WriteCSV(path string, rows []store.ResultRow) error {
	data, err := EncodeCSV(rows)
	if err != nil {
		return err
	}
	return filelock.LockAndWrite(path, data)
}
