package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/transform"
)

// ErrNoHeader is returned when a file has no header row to read columns from.
var ErrNoHeader = errors.New("no columns to parse from file")

// ParseError describes a failure to read a file with a given dialect.
type ParseError struct {
	Dialect Dialect
	Line    int
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse with %s: line %d: %v", e.Dialect, e.Line, e.Err)
	}
	return fmt.Sprintf("parse with %s: %v", e.Dialect, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Read parses delimited text from r. The first record is the header.
// Empty fields become null cells. Records shorter than the header are padded
// with nulls; longer records are an error.
func Read(r io.Reader, d Dialect) (*Dataset, error) {
	enc, err := LookupEncoding(d.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(transform.NewReader(r, enc.NewDecoder()))
	reader.Comma = d.Delimiter
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Dialect: d, Err: ErrNoHeader}
	}
	if err != nil {
		return nil, csvParseError(d, err)
	}

	ds := New(uniqueColumns(header))
	width := ds.Width()

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvParseError(d, err)
		}
		if len(record) > width {
			line, _ := reader.FieldPos(0)
			return nil, &ParseError{
				Dialect: d,
				Line:    line,
				Err:     fmt.Errorf("expected %d fields, saw %d", width, len(record)),
			}
		}

		row := make([]Cell, width)
		for i, field := range record {
			if field != "" {
				row[i] = Value(field)
			}
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

func csvParseError(d Dialect, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Dialect: d, Line: pe.Line, Err: pe.Err}
	}
	return &ParseError{Dialect: d, Err: err}
}

// ReadFile parses the file at path with dialect d.
func ReadFile(path string, d Dialect) (*Dataset, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return Read(f, d)
}

// Write encodes ds as delimited text. Null cells are written as empty fields.
func Write(w io.Writer, ds *Dataset, d Dialect) error {
	enc, err := LookupEncoding(d.Encoding)
	if err != nil {
		return err
	}

	ew := transform.NewWriter(w, enc.NewEncoder())
	cw := csv.NewWriter(ew)
	cw.Comma = d.Delimiter

	if err := writeRecord(cw, ew, ds.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, ds.Width())
	for i, row := range ds.Rows {
		for j, cell := range row {
			record[j] = cell.String()
		}
		if err := writeRecord(cw, ew, record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return ew.Close()
}

// writeRecord writes one record. A record holding a single empty field is
// written as a quoted empty string, since csv.Writer emits a blank line for
// it and csv.Reader skips blank lines.
func writeRecord(cw *csv.Writer, w io.Writer, record []string) error {
	if len(record) != 1 || record[0] != "" {
		return cw.Write(record)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\"\"\n")
	return err
}

// WriteFile writes ds to path, replacing any existing file. Missing parent
// directories are created. The content goes to a temporary file in the same
// directory first and is renamed into place, so path either holds the previous
// content or the complete new content.
func WriteFile(path string, ds *Dataset, d Dialect) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := Write(tmp, ds, d); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
