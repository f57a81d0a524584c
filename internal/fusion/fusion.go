package fusion

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/danielpemor/DashWeb/internal/logging"
)

var ErrNoCommonKeys = errors.New("no common join keys between geometry and tabular data")

// CollisionSuffix is appended to tabular columns whose name already exists in the geometry schema.
const CollisionSuffix = "_data"

// JoinKeys are the candidate keys, in join order.
var JoinKeys = []string{electoral.ColEntity, electoral.ColPrecinct}

type joinKey [2]electoral.NullInt

func keyOf(r *electoral.Record, keys []string) joinKey {
	var k joinKey
	for i, col := range keys {
		k[i] = r.ID(col)
	}
	return k
}

// CommonKeys returns the join keys present as identifiers in both collections.
func CommonKeys(geo, tab *electoral.Collection) []string {
	var out []string
	for _, k := range JoinKeys {
		if geo.HasID(k) && tab.HasID(k) {
			out = append(out, k)
		}
	}
	return out
}

// Join attaches tabular attributes to every geometry record (left outer join).
// Unmatched records carry NaN numbers and empty labels for the tabular schema.
// Duplicate keys are collapsed to their first occurrence and coalition totals are recomputed.
func Join(geo, tab *electoral.Collection) (*electoral.Collection, error) {
	start := time.Now()
	keys := CommonKeys(geo, tab)
	if len(keys) == 0 {
		return nil, ErrNoCommonKeys
	}

	rename := func(col string) string {
		if geo.HasColumn(col) {
			return col + CollisionSuffix
		}
		return col
	}

	out := &electoral.Collection{
		IDColumns:     append([]string(nil), geo.IDColumns...),
		NumberColumns: append([]string(nil), geo.NumberColumns...),
		LabelColumns:  append([]string(nil), geo.LabelColumns...),
	}
	var extraIDs []string
	for _, col := range tab.IDColumns {
		if isKey(col, keys) {
			continue
		}
		extraIDs = append(extraIDs, col)
		out.IDColumns = append(out.IDColumns, rename(col))
	}
	for _, col := range tab.NumberColumns {
		out.NumberColumns = append(out.NumberColumns, rename(col))
	}
	for _, col := range tab.LabelColumns {
		out.LabelColumns = append(out.LabelColumns, rename(col))
	}

	index := make(map[joinKey]*electoral.Record, len(tab.Records))
	for _, r := range tab.Records {
		k := keyOf(r, keys)
		if _, dup := index[k]; !dup {
			index[k] = r
		}
	}

	matched := 0
	out.Records = make([]*electoral.Record, 0, len(geo.Records))
	for _, g := range geo.Records {
		rec := g.Clone()
		t, ok := index[keyOf(g, keys)]
		if ok {
			matched++
		}
		for _, col := range extraIDs {
			if ok {
				rec.IDs[rename(col)] = t.ID(col)
			} else {
				rec.IDs[rename(col)] = electoral.NullInt{}
			}
		}
		for _, col := range tab.NumberColumns {
			v := math.NaN()
			if ok {
				v = t.Number(col)
			}
			rec.Numbers[rename(col)] = v
		}
		for _, col := range tab.LabelColumns {
			v := ""
			if ok {
				v = t.Label(col)
			}
			rec.Labels[rename(col)] = v
		}
		out.Records = append(out.Records, rec)
	}

	if unmatched := len(geo.Records) - matched; unmatched > 0 {
		logging.LogWarning("fusion", fmt.Sprintf("%d of %d geometries have no tabular match", unmatched, len(geo.Records)))
	}

	fused := Dedup(out, keys...)
	electoral.ApplyCoalitions(fused)
	logging.LogTransform("fusion", len(geo.Records), fused.Len(), time.Since(start))
	return fused, nil
}

// Dedup keeps the first record of every key tuple. Missing keys compare equal to each other.
func Dedup(c *electoral.Collection, keys ...string) *electoral.Collection {
	if len(keys) == 0 {
		keys = JoinKeys
	}
	seen := make(map[joinKey]bool, len(c.Records))
	recs := make([]*electoral.Record, 0, len(c.Records))
	for _, r := range c.Records {
		k := keyOf(r, keys)
		if seen[k] {
			continue
		}
		seen[k] = true
		recs = append(recs, r)
	}
	logging.LogSkipped("fusion", "duplicate keys", len(c.Records)-len(recs))
	return c.WithRecords(recs)
}

func isKey(col string, keys []string) bool {
	for _, k := range keys {
		if k == col {
			return true
		}
	}
	return false
}
