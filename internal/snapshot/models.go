package snapshot

import (
	"time"

	"github.com/google/uuid"
)

// View is one published map view.
type View struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Release   string    `gorm:"column:release_name;index;not null"`
	Level     string    `gorm:"not null"`
	State     *int64
	Status    string
	Warnings  string
	Units     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Unit is one feature of a published view. Properties and Geometry hold GeoJSON text.
type Unit struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ViewID     uuid.UUID `gorm:"type:uuid;index;not null"`
	Ordinal    int       `gorm:"not null"`
	Properties string    `gorm:"type:text"`
	Geometry   string    `gorm:"type:text"`
}
