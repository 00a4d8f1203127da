// Package store persists imported boundaries and lookup runs in Postgres.
package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/EmpoweredVote/civicsearch/internal/db"
	"github.com/EmpoweredVote/civicsearch/internal/geo"
	"github.com/EmpoweredVote/civicsearch/internal/match"
	"github.com/EmpoweredVote/civicsearch/internal/pointcsv"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/paulmach/orb/encoding/wkt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const Schema = "civicsearch"

// Namespace for boundary IDs. Stable forever: re-importing a dataset
// updates rows in place instead of duplicating them.
var Namespace = uuid.MustParse("6f1c2a7e-3d4b-5c8a-9e0f-1a2b3c4d5e6f")

// BoundaryID is the deterministic ID of record seq of dataset.
func BoundaryID(dataset string, seq int) uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte("boundary:"+dataset+":"+strconv.Itoa(seq)))
}

// Init creates the schema and tables.
func Init(d *gorm.DB) error {
	if err := db.EnsureSchema(d, Schema); err != nil {
		return fmt.Errorf("ensure schema %s: %w", Schema, err)
	}
	return d.AutoMigrate(&Boundary{}, &LookupRun{}, &PointMatch{})
}

// ToBoundary converts a decoded feature to its stored form.
func ToBoundary(dataset, mtfcc, nameField string, seq int, f geo.Feature, now time.Time) (Boundary, error) {
	attrs, err := json.Marshal(f.Attributes)
	if err != nil {
		return Boundary{}, fmt.Errorf("marshal attributes: %w", err)
	}

	b := Boundary{
		ID:         BoundaryID(dataset, seq),
		Dataset:    dataset,
		Seq:        seq,
		MTFCC:      mtfcc,
		Attributes: string(attrs),
		ImportedAt: now,
	}
	b.Name, _ = f.Name(nameField)
	b.GeoID, _ = f.Attributes.Text("GEOID")
	if code, ok := f.Attributes.Text("MTFCC"); ok {
		b.MTFCC = code
	}

	if !f.Region.Empty() {
		mp := f.Region.MultiPolygon()
		b.GeometryWKT = wkt.MarshalString(mp)
		bound := f.Region.Bound()
		b.MinX, b.MinY = bound.Min[0], bound.Min[1]
		b.MaxX, b.MaxY = bound.Max[0], bound.Max[1]
	}
	return b, nil
}

// FromBoundary rebuilds the feature a boundary row was created from.
func FromBoundary(b Boundary) (geo.Feature, error) {
	f := geo.Feature{Attributes: geo.Attributes{}}
	if b.Attributes != "" {
		if err := json.Unmarshal([]byte(b.Attributes), &f.Attributes); err != nil {
			return geo.Feature{}, fmt.Errorf("boundary %s: attributes: %w", b.ID, err)
		}
	}

	if b.GeometryWKT == "" {
		f.Region = geo.NewRegion(nil)
		return f, nil
	}
	mp, err := wkt.UnmarshalMultiPolygon(b.GeometryWKT)
	if err != nil {
		return geo.Feature{}, fmt.Errorf("boundary %s: geometry: %w", b.ID, err)
	}
	f.Region = geo.FromMultiPolygon(mp)
	return f, nil
}

// SaveBoundaries replaces the stored copy of a dataset in one transaction.
func SaveBoundaries(d *gorm.DB, dataset, mtfcc, nameField string, features []geo.Feature) error {
	now := time.Now().UTC()
	rows := make([]Boundary, 0, len(features))
	for i, f := range features {
		b, err := ToBoundary(dataset, mtfcc, nameField, i, f, now)
		if err != nil {
			return err
		}
		rows = append(rows, b)
	}

	return d.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dataset = ? AND seq >= ?", dataset, len(rows)).
			Delete(&Boundary{}).Error; err != nil {
			return fmt.Errorf("trim boundaries: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(&rows, 100).Error; err != nil {
			return fmt.Errorf("upsert boundaries: %w", err)
		}
		return nil
	})
}

// LoadBoundaries reads a dataset back in archive order.
func LoadBoundaries(d *gorm.DB, dataset string) ([]geo.Feature, error) {
	var rows []Boundary
	if err := d.Where("dataset = ?", dataset).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load boundaries: %w", err)
	}

	features := make([]geo.Feature, 0, len(rows))
	for _, b := range rows {
		f, err := FromBoundary(b)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, nil
}

// NewPointMatches builds the rows stored for one run.
func NewPointMatches(runID uuid.UUID, rows []pointcsv.Row, results []match.Result) []PointMatch {
	out := make([]PointMatch, len(results))
	for i, r := range results {
		out[i] = PointMatch{
			ID:        uuid.New(),
			RunID:     runID,
			Seq:       i,
			PointID:   rows[i].ID,
			Lat:       rows[i].Lat,
			Lon:       rows[i].Lon,
			Status:    string(r.Status()),
			Districts: append(pq.StringArray{}, r.Names...),
		}
	}
	return out
}

// SaveRun stores a batch of results and returns the run ID.
func SaveRun(d *gorm.DB, dataset string, rows []pointcsv.Row, results []match.Result) (uuid.UUID, error) {
	run := LookupRun{
		ID:         uuid.New(),
		Dataset:    dataset,
		PointCount: len(results),
		CreatedAt:  time.Now().UTC(),
	}
	for _, r := range results {
		if len(r.Names) > 0 {
			run.MatchedCount++
		}
	}
	matches := NewPointMatches(run.ID, rows, results)

	err := d.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		if len(matches) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&matches, 500).Error; err != nil {
			return fmt.Errorf("insert point matches: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return run.ID, nil
}
