// Package sanitize turns collections into JSON-safe feature properties.
package sanitize

import (
	"fmt"
	"math"
	"strconv"

	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/danielpemor/DashWeb/internal/logging"
	"github.com/twpayne/go-geos"
)

// Feature is one map unit ready for encoding.
type Feature struct {
	Properties map[string]any
	Geometry   *geos.Geom
}

type kind int

const (
	kindNone kind = iota
	kindBool
	kindInt
	kindFloat
	kindString
	kindMixed
)

// Features types every property of an aggregated collection: identifier columns become
// int64 (missing 0), numbers finite float64 (NaN and ±Inf become 0), labels strings.
func Features(c *electoral.Collection) []Feature {
	rows := make([]map[string]any, c.Len())
	for i, r := range c.Records {
		row := make(map[string]any, len(c.IDColumns)+len(c.NumberColumns)+len(c.LabelColumns))
		for _, col := range c.IDColumns {
			if id := r.ID(col); id.Valid {
				row[col] = id.Value
			} else {
				row[col] = nil
			}
		}
		for _, col := range c.NumberColumns {
			v := r.Number(col)
			if electoral.IsIDColumn(col) {
				if finite(v) {
					row[col] = int64(v)
				} else {
					row[col] = nil
				}
				continue
			}
			row[col] = v
		}
		for _, col := range c.LabelColumns {
			row[col] = r.Label(col)
		}
		rows[i] = row
	}
	rows = Properties(rows)

	out := make([]Feature, len(rows))
	for i, r := range c.Records {
		out[i] = Feature{Properties: rows[i], Geometry: r.Geometry}
	}
	return out
}

// Raw encodes a collection without coercion. Missing values become nil.
func Raw(c *electoral.Collection) []Feature {
	out := make([]Feature, c.Len())
	for i, r := range c.Records {
		props := make(map[string]any, len(c.IDColumns)+len(c.NumberColumns)+len(c.LabelColumns))
		for _, col := range c.IDColumns {
			if id := r.ID(col); id.Valid {
				props[col] = id.Value
			} else {
				props[col] = nil
			}
		}
		for _, col := range c.NumberColumns {
			if v := r.Number(col); finite(v) {
				props[col] = v
			} else {
				props[col] = nil
			}
		}
		for _, col := range c.LabelColumns {
			props[col] = r.Label(col)
		}
		out[i] = Feature{Properties: props, Geometry: r.Geometry}
	}
	return out
}

// Properties infers one kind per column across all rows and coerces every cell to it.
// Columns mixing incompatible kinds are stringified wholesale. Rows are modified in place.
func Properties(rows []map[string]any) []map[string]any {
	kinds := map[string]kind{}
	for _, row := range rows {
		for col, v := range row {
			kinds[col] = merge(kinds[col], kindOf(v))
		}
	}
	for col, k := range kinds {
		if k == kindMixed {
			logging.LogWarning("sanitize", fmt.Sprintf("column %s mixes value kinds, encoding as text", col))
		}
		for _, row := range rows {
			v, ok := row[col]
			if !ok {
				v = nil
			}
			row[col] = coerce(v, k)
		}
	}
	return rows
}

func kindOf(v any) kind {
	switch v.(type) {
	case nil:
		return kindNone
	case bool:
		return kindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return kindInt
	case float32, float64:
		return kindFloat
	case string:
		return kindString
	}
	return kindMixed
}

func merge(a, b kind) kind {
	switch {
	case a == b, b == kindNone:
		return a
	case a == kindNone:
		return b
	case (a == kindInt && b == kindFloat) || (a == kindFloat && b == kindInt):
		return kindFloat
	}
	return kindMixed
}

func coerce(v any, k kind) any {
	switch k {
	case kindBool:
		b, _ := v.(bool)
		return b
	case kindInt:
		return toInt(v)
	case kindFloat:
		f := toFloat(v)
		if !finite(f) {
			return 0.0
		}
		return f
	case kindString:
		s, _ := v.(string)
		return s
	case kindMixed:
		return stringify(v)
	}
	// a column with no values at all
	return 0.0
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	}
	return 0
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case nil:
		return 0
	}
	return float64(toInt(v))
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if !finite(x) {
			return "0"
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return stringify(float64(x))
	}
	return fmt.Sprint(v)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
