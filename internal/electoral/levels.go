package electoral

import (
	"errors"
	"fmt"
	"strings"
)

// Level is an administrative aggregation level.
type Level string

const (
	LevelPrecinct        Level = ColPrecinct
	LevelMunicipality    Level = ColMunicipality
	LevelFederalDistrict Level = ColFederalDistrict
	LevelLocalDistrict   Level = ColLocalDistrict
)

// Levels lists every level from finest to coarsest.
var Levels = []Level{LevelPrecinct, LevelMunicipality, LevelFederalDistrict, LevelLocalDistrict}

var ErrUnknownLevel = errors.New("unknown level")

var levelAliases = map[string]Level{
	"SECCION":          LevelPrecinct,
	"PRECINCT":         LevelPrecinct,
	"MUNICIPIO":        LevelMunicipality,
	"MUNICIPALITY":     LevelMunicipality,
	"DISTRITO_FEDERAL": LevelFederalDistrict,
	"DISTRITO_F":       LevelFederalDistrict,
	"FEDERAL_DISTRICT": LevelFederalDistrict,
	"DISTRITO_LOCAL":   LevelLocalDistrict,
	"DISTRITO_L":       LevelLocalDistrict,
	"LOCAL_DISTRICT":   LevelLocalDistrict,
}

// ParseLevel accepts a level name in either the source column spelling or English.
// The empty string selects the precinct level.
func ParseLevel(s string) (Level, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, " ", "_")
	if key == "" {
		return LevelPrecinct, nil
	}
	if l, ok := levelAliases[key]; ok {
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// Column is the identifier column grouping records at this level.
func (l Level) Column() string { return string(l) }

// Aggregated reports whether the level merges precincts.
func (l Level) Aggregated() bool { return l != LevelPrecinct }

func (l Level) String() string { return string(l) }
