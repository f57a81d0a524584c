package tabular

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/danielpemor/DashWeb/internal/logging"
	"github.com/danielpemor/DashWeb/internal/metrics"
)

var (
	ErrMissingKeyColumns = errors.New("missing required key columns")
	ErrNoHeader          = errors.New("tabular source has no header row")
)

// Options controls a tabular load.
type Options struct {
	// Entity keeps only the rows of one state when set.
	Entity *int64
	// Comma is the CSV field delimiter. Zero means ','.
	Comma rune
}

type rowSource interface {
	Next() ([]string, error)
	Close() error
}

func open(path string, opts Options) (rowSource, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return openXLSX(path)
	}
	return openCSV(path, opts.Comma)
}

// Load reads precinct results. Key columns become identifiers, label columns stay text
// and every other column is parsed as a number (NaN when malformed). Coalition totals
// are derived before returning.
func Load(path string, opts Options) (*electoral.Collection, error) {
	start := time.Now()
	rows, err := open(path, opts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	header, err := rows.Next()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, ErrNoHeader)
	}
	if err != nil {
		return nil, err
	}

	s, err := newSchema(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	out := &electoral.Collection{
		IDColumns:     []string{electoral.ColEntity, electoral.ColPrecinct},
		NumberColumns: s.numberNames(),
		LabelColumns:  s.labelNames(),
	}
	badKeys := 0
	for line := 2; ; line++ {
		rec, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, line, err)
		}
		r, ok := s.record(rec)
		if !ok {
			badKeys++
			continue
		}
		if opts.Entity != nil && r.ID(electoral.ColEntity).Value != *opts.Entity {
			continue
		}
		out.Records = append(out.Records, r)
	}
	logging.LogSkipped("tabular", "rows with unparseable keys", badKeys)

	electoral.ApplyCoalitions(out)
	metrics.LoadDurationMs.WithLabelValues("tabular").Observe(float64(time.Since(start).Milliseconds()))
	logging.LogLoad("tabular", path, out.Len(), time.Since(start))
	return out, nil
}

// Columns returns the normalized header of a tabular source.
func Columns(path string) ([]string, error) {
	rows, err := open(path, Options{})
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	header, err := rows.Next()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, ErrNoHeader)
	}
	if err != nil {
		return nil, err
	}
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = electoral.NormalizeColumn(h)
	}
	return out, nil
}

// AvailableEntities lists the distinct state ids in a tabular source, ascending.
func AvailableEntities(path string) ([]int64, error) {
	rows, err := open(path, Options{})
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	header, err := rows.Next()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoHeader)
	}
	idx := -1
	for i, h := range header {
		if electoral.NormalizeColumn(h) == electoral.ColEntity {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%s: %w: %s", path, ErrMissingKeyColumns, electoral.ColEntity)
	}

	seen := map[int64]bool{}
	var out []int64
	for {
		rec, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if idx >= len(rec) {
			continue
		}
		if id := electoral.ParseID(rec[idx]); id.Valid && !seen[id.Value] {
			seen[id.Value] = true
			out = append(out, id.Value)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ParseNumber parses a numeric cell: '%' and ',' are stripped, a bare "-" is 0,
// anything else unparseable is NaN.
func ParseNumber(cell string) float64 {
	s := strings.TrimSpace(cell)
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "-" {
		return 0
	}
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ClampPercent limits v to [0, 100]. NaN is returned unchanged.
func ClampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Max(0, math.Min(100, v))
}

type column struct {
	name    string
	index   int
	percent bool
}

type schema struct {
	entity, precinct int
	numbers, labels  []column
}

func newSchema(header []string) (*schema, error) {
	s := &schema{entity: -1, precinct: -1}
	seen := map[string]bool{}
	for i, h := range header {
		name := electoral.NormalizeColumn(h)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		switch {
		case name == electoral.ColEntity:
			s.entity = i
		case name == electoral.ColPrecinct:
			s.precinct = i
		case electoral.IsLabelColumn(name):
			s.labels = append(s.labels, column{name: name, index: i})
		default:
			s.numbers = append(s.numbers, column{name: name, index: i, percent: electoral.IsPercentColumn(name)})
		}
	}

	var missing []string
	if s.entity < 0 {
		missing = append(missing, electoral.ColEntity)
	}
	if s.precinct < 0 {
		missing = append(missing, electoral.ColPrecinct)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingKeyColumns, strings.Join(missing, ", "))
	}
	return s, nil
}

func (s *schema) numberNames() []string {
	out := make([]string, len(s.numbers))
	for i, c := range s.numbers {
		out[i] = c.name
	}
	return out
}

func (s *schema) labelNames() []string {
	out := make([]string, len(s.labels))
	for i, c := range s.labels {
		out[i] = c.name
	}
	return out
}

// record converts one row. ok is false when a key cell cannot be parsed.
func (s *schema) record(rec []string) (*electoral.Record, bool) {
	cell := func(i int) string {
		if i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	entity := electoral.ParseID(cell(s.entity))
	precinct := electoral.ParseID(cell(s.precinct))
	if !entity.Valid || !precinct.Valid {
		return nil, false
	}

	r := electoral.NewRecord()
	r.IDs[electoral.ColEntity] = entity
	r.IDs[electoral.ColPrecinct] = precinct
	for _, c := range s.numbers {
		v := ParseNumber(cell(c.index))
		if c.percent {
			v = ClampPercent(v)
		}
		r.Numbers[c.name] = v
	}
	for _, c := range s.labels {
		r.Labels[c.name] = strings.TrimSpace(cell(c.index))
	}
	return r, true
}
