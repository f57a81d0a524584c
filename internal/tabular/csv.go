package tabular

import (
	"bufio"
	"encoding/csv"
	"os"
)

type csvRows struct {
	f *os.File
	r *csv.Reader
}

func openCSV(path string, comma rune) (*csvRows, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if comma != 0 {
		r.Comma = comma
	}
	return &csvRows{f: f, r: r}, nil
}

func (c *csvRows) Next() ([]string, error) { return c.r.Read() }

func (c *csvRows) Close() error { return c.f.Close() }
