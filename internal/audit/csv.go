package audit

import (
	"bufio"
	"encoding/csv"
	"io"
	"time"
)

const csvFlushEvery = 200

var csvHeader = []string{"occurred_at", "actor", "role", "action", "path", "route", "module"}

// WriteCSV streams rows as CRLF-terminated CSV with a header line.
func WriteCSV(w io.Writer, rows []TimelineRow) error {
	buf := bufio.NewWriterSize(w, 32*1024)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for i, row := range rows {
		record := []string{
			row.At.UTC().Format(time.RFC3339),
			row.Actor,
			row.Role,
			row.Action,
			row.Path,
			row.Route,
			row.Module,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
		if (i+1)%csvFlushEvery == 0 {
			writer.Flush()
			if err := writer.Error(); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return buf.Flush()
}
