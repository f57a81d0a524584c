// Package snapshot persists computed map views so they can be served or audited
// without recomputing the dissolve.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/danielpemor/DashWeb/internal/db"
	"github.com/danielpemor/DashWeb/internal/logging"
	"github.com/danielpemor/DashWeb/internal/visualizer"
	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 500

var ErrNotFound = errors.New("snapshot not found")

// Store writes snapshots into one schema (Postgres) or unqualified tables (sqlite).
type Store struct {
	db     *gorm.DB
	schema string
}

func NewStore(d *gorm.DB, schema string) *Store {
	return &Store{db: d, schema: schema}
}

func (s *Store) table(name string) string {
	if s.schema == "" || s.db.Dialector.Name() != "postgres" {
		return name
	}
	return s.schema + "." + name
}

func (s *Store) views(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.table("snapshot_views"))
}

func (s *Store) units(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.table("snapshot_units"))
}

// Migrate creates the schema and tables.
func (s *Store) Migrate(ctx context.Context) error {
	if s.schema != "" {
		if err := dbpkg.EnsureSchema(s.db, s.schema); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	if err := s.views(ctx).AutoMigrate(&View{}); err != nil {
		return fmt.Errorf("migrate views: %w", err)
	}
	if err := s.units(ctx).AutoMigrate(&Unit{}); err != nil {
		return fmt.Errorf("migrate units: %w", err)
	}
	return nil
}

// Publish stores v under release. Publishing the same release, level and state again replaces the
// earlier snapshot; ids are deterministic.
func (s *Store) Publish(ctx context.Context, release string, v *visualizer.View) (uuid.UUID, error) {
	start := time.Now()
	id := ViewID(release, string(v.Level), v.Region)

	fc, err := v.FeatureCollection()
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode view: %w", err)
	}
	units := make([]Unit, 0, len(fc.Features))
	for i, f := range fc.Features {
		props, err := json.Marshal(f.Properties)
		if err != nil {
			return uuid.Nil, fmt.Errorf("unit %d properties: %w", i, err)
		}
		geom, err := json.Marshal(geojson.NewGeometry(f.Geometry))
		if err != nil {
			return uuid.Nil, fmt.Errorf("unit %d geometry: %w", i, err)
		}
		units = append(units, Unit{
			ID:         UnitID(id, i),
			ViewID:     id,
			Ordinal:    i,
			Properties: string(props),
			Geometry:   string(geom),
		})
	}

	row := View{
		ID:       id,
		Release:  release,
		Level:    string(v.Level),
		State:    v.Region,
		Status:   string(v.Status),
		Warnings: strings.Join(v.Warnings, "; "),
		Units:    len(units),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(s.table("snapshot_views")).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "warnings", "units", "updated_at"}),
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("upsert view: %w", err)
		}
		if err := tx.Table(s.table("snapshot_units")).Where("view_id = ?", id).Delete(&Unit{}).Error; err != nil {
			return fmt.Errorf("clear units: %w", err)
		}
		if len(units) == 0 {
			return nil
		}
		if err := tx.Table(s.table("snapshot_units")).CreateInBatches(units, batchSize).Error; err != nil {
			return fmt.Errorf("insert units: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	logging.LogUpsert("snapshot", len(units), time.Since(start))
	return id, nil
}

// Get reads a published view and its units in feature order.
func (s *Store) Get(ctx context.Context, release, level string, state *int64) (*View, []Unit, error) {
	id := ViewID(release, level, state)
	var v View
	if err := s.views(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	var units []Unit
	if err := s.units(ctx).Where("view_id = ?", id).Order("ordinal").Find(&units).Error; err != nil {
		return nil, nil, err
	}
	return &v, units, nil
}

// Releases lists the published release names.
func (s *Store) Releases(ctx context.Context) ([]string, error) {
	var out []string
	err := s.views(ctx).Distinct("release_name").Order("release_name").Pluck("release_name", &out).Error
	return out, err
}
