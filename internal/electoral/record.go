package electoral

import (
	"math"
	"sort"

	"github.com/twpayne/go-geos"
)

// Identifier columns shared by the tabular and geometry sources.
const (
	ColEntity          = "ID_ENTIDAD"
	ColPrecinct        = "SECCION"
	ColMunicipality    = "MUNICIPIO"
	ColFederalDistrict = "DISTRITO_FEDERAL"
	ColLocalDistrict   = "DISTRITO_LOCAL"
)

// IDColumns lists every administrative identifier column in canonical order.
var IDColumns = []string{ColEntity, ColPrecinct, ColMunicipality, ColFederalDistrict, ColLocalDistrict}

// NullInt is an integer identifier that may be missing.
type NullInt struct {
	Value int64
	Valid bool
}

// Int returns a present identifier.
func Int(v int64) NullInt { return NullInt{Value: v, Valid: true} }

// Float converts the identifier to a float, missing becomes 0.
func (n NullInt) Float() float64 {
	if !n.Valid {
		return 0
	}
	return float64(n.Value)
}

// Record is one row of a precinct or aggregated collection.
type Record struct {
	IDs      map[string]NullInt
	Numbers  map[string]float64
	Labels   map[string]string
	Geometry *geos.Geom
}

func NewRecord() *Record {
	return &Record{
		IDs:     map[string]NullInt{},
		Numbers: map[string]float64{},
		Labels:  map[string]string{},
	}
}

// ID returns the identifier for col, missing when absent.
func (r *Record) ID(col string) NullInt {
	return r.IDs[col]
}

// Number returns the numeric value for col. NaN means missing.
func (r *Record) Number(col string) float64 {
	v, ok := r.Numbers[col]
	if !ok {
		return math.NaN()
	}
	return v
}

// Value returns the number for col treating a missing value as 0.
func (r *Record) Value(col string) float64 {
	v := r.Number(col)
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func (r *Record) Label(col string) string {
	return r.Labels[col]
}

// Clone copies the attribute maps. The geometry pointer is shared.
func (r *Record) Clone() *Record {
	out := &Record{
		IDs:      make(map[string]NullInt, len(r.IDs)),
		Numbers:  make(map[string]float64, len(r.Numbers)),
		Labels:   make(map[string]string, len(r.Labels)),
		Geometry: r.Geometry,
	}
	for k, v := range r.IDs {
		out.IDs[k] = v
	}
	for k, v := range r.Numbers {
		out.Numbers[k] = v
	}
	for k, v := range r.Labels {
		out.Labels[k] = v
	}
	return out
}

// Collection is an ordered set of records sharing one schema.
type Collection struct {
	IDColumns     []string
	NumberColumns []string
	LabelColumns  []string
	Records       []*Record
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

func (c *Collection) HasID(col string) bool     { return contains(c.IDColumns, col) }
func (c *Collection) HasNumber(col string) bool { return contains(c.NumberColumns, col) }
func (c *Collection) HasLabel(col string) bool  { return contains(c.LabelColumns, col) }

// HasColumn reports whether col is part of the schema under any kind.
func (c *Collection) HasColumn(col string) bool {
	return c.HasID(col) || c.HasNumber(col) || c.HasLabel(col)
}

// Columns returns the whole schema: ids, then numbers, then labels.
func (c *Collection) Columns() []string {
	out := make([]string, 0, len(c.IDColumns)+len(c.NumberColumns)+len(c.LabelColumns))
	out = append(out, c.IDColumns...)
	out = append(out, c.NumberColumns...)
	return append(out, c.LabelColumns...)
}

// AddNumberColumn registers col in the schema. Records without a value get NaN.
func (c *Collection) AddNumberColumn(col string) {
	if c.HasNumber(col) {
		return
	}
	c.NumberColumns = append(c.NumberColumns, col)
	for _, r := range c.Records {
		if _, ok := r.Numbers[col]; !ok {
			r.Numbers[col] = math.NaN()
		}
	}
}

// AddLabelColumn registers col in the schema. Records without a value get "".
func (c *Collection) AddLabelColumn(col string) {
	if c.HasLabel(col) {
		return
	}
	c.LabelColumns = append(c.LabelColumns, col)
	for _, r := range c.Records {
		if _, ok := r.Labels[col]; !ok {
			r.Labels[col] = ""
		}
	}
}

// WithRecords returns a collection with the same schema over recs.
func (c *Collection) WithRecords(recs []*Record) *Collection {
	return &Collection{
		IDColumns:     append([]string(nil), c.IDColumns...),
		NumberColumns: append([]string(nil), c.NumberColumns...),
		LabelColumns:  append([]string(nil), c.LabelColumns...),
		Records:       recs,
	}
}

// Filter keeps the records matching keep. Records are shared, not copied.
func (c *Collection) Filter(keep func(*Record) bool) *Collection {
	recs := make([]*Record, 0, len(c.Records))
	for _, r := range c.Records {
		if keep(r) {
			recs = append(recs, r)
		}
	}
	return c.WithRecords(recs)
}

// FilterEntity keeps the records of one state.
func (c *Collection) FilterEntity(entity int64) *Collection {
	return c.Filter(func(r *Record) bool {
		id := r.ID(ColEntity)
		return id.Valid && id.Value == entity
	})
}

// Entities lists the distinct state ids present, ascending.
func (c *Collection) Entities() []int64 {
	seen := map[int64]bool{}
	var out []int64
	for _, r := range c.Records {
		id := r.ID(ColEntity)
		if id.Valid && !seen[id.Value] {
			seen[id.Value] = true
			out = append(out, id.Value)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Sum adds col across all records, skipping missing values.
func (c *Collection) Sum(col string) float64 {
	var total float64
	for _, r := range c.Records {
		total += r.Value(col)
	}
	return total
}

func contains(cols []string, col string) bool {
	for _, c := range cols {
		if c == col {
			return true
		}
	}
	return false
}
