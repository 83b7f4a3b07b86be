// Package progress logs the convergence of a training run.
package progress

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var header = []string{"epoch", "elapsed_seconds", "exploitability"}

// Record is one row of the progress log.
type Record struct {
	Epoch          int
	Elapsed        time.Duration
	Exploitability float64
}

// CSVWriter writes progress records as CSV, one row per record, preceded
// by a header row.
type CSVWriter struct {
	w             *csv.Writer
	headerWritten bool
}

// NewCSVWriter returns a CSVWriter writing to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Write writes a single record and flushes it to the underlying writer.
func (c *CSVWriter) Write(r Record) error {
	if !c.headerWritten {
		if err := c.w.Write(header); err != nil {
			return errors.Wrap(err, "writing header")
		}

		c.headerWritten = true
	}

	row := []string{
		strconv.Itoa(r.Epoch),
		strconv.FormatFloat(r.Elapsed.Seconds(), 'f', 3, 64),
		strconv.FormatFloat(r.Exploitability, 'g', -1, 64),
	}

	if err := c.w.Write(row); err != nil {
		return errors.Wrapf(err, "writing epoch %d", r.Epoch)
	}

	c.w.Flush()
	return errors.Wrap(c.w.Error(), "flushing progress log")
}

// ReadCSV reads the records written by a CSVWriter.
func ReadCSV(r io.Reader) ([]Record, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading progress log")
	}

	if len(rows) == 0 {
		return nil, nil
	}

	var records []Record
	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, errors.Errorf("row %d: expected %d fields, got %d", i+1, len(header), len(row))
		}

		epoch, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: parsing epoch", i+1)
		}

		seconds, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: parsing elapsed time", i+1)
		}

		exploitability, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: parsing exploitability", i+1)
		}

		records = append(records, Record{
			Epoch:          epoch,
			Elapsed:        time.Duration(seconds * float64(time.Second)),
			Exploitability: exploitability,
		})
	}

	return records, nil
}
