package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Boundary is one district as imported from a TIGER archive. Seq keeps the
// archive's record order so matches read back from the database list
// districts in the same order as matches against the archive itself.
type Boundary struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	Dataset     string    `gorm:"index;size:255;column:dataset" json:"dataset"`
	Seq         int       `gorm:"column:seq" json:"seq"`
	Name        string    `gorm:"column:name" json:"name"`
	GeoID       string    `gorm:"size:50;column:geo_id" json:"geo_id"` // Census GEOID
	MTFCC       string    `gorm:"index;size:10;column:mtfcc" json:"mtfcc"` // MAF/TIGER Feature Class Code
	Attributes  string    `gorm:"type:jsonb;column:attributes" json:"-"`
	GeometryWKT string    `gorm:"type:text;column:geometry_wkt" json:"-"`

	MinX float64 `gorm:"column:min_x" json:"min_x"`
	MinY float64 `gorm:"column:min_y" json:"min_y"`
	MaxX float64 `gorm:"column:max_x" json:"max_x"`
	MaxY float64 `gorm:"column:max_y" json:"max_y"`

	ImportedAt time.Time `gorm:"column:imported_at" json:"imported_at"`
}

func (Boundary) TableName() string { return "civicsearch.boundaries" }

// LookupRun is one batch of points matched against a dataset.
type LookupRun struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	Dataset      string    `gorm:"index;size:255;column:dataset" json:"dataset"`
	PointCount   int       `gorm:"column:point_count" json:"point_count"`
	MatchedCount int       `gorm:"column:matched_count" json:"matched_count"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (LookupRun) TableName() string { return "civicsearch.lookup_runs" }

// PointMatch is the stored result for one point of a run.
type PointMatch struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	RunID     uuid.UUID      `gorm:"type:uuid;index;column:run_id" json:"run_id"`
	Seq       int            `gorm:"column:seq" json:"seq"`
	PointID   string         `gorm:"column:point_id" json:"point_id"`
	Lat       float64        `gorm:"column:lat" json:"lat"`
	Lon       float64        `gorm:"column:lon" json:"lon"`
	Status    string         `gorm:"size:16;column:status" json:"status"`
	Districts pq.StringArray `gorm:"type:text[];column:districts" json:"districts"`
}

func (PointMatch) TableName() string { return "civicsearch.point_matches" }
