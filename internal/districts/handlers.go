package districts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/EmpoweredVote/civicsearch/internal/config"
	"github.com/EmpoweredVote/civicsearch/internal/logging"
	"github.com/EmpoweredVote/civicsearch/internal/match"
	"github.com/EmpoweredVote/civicsearch/internal/metrics"
	"github.com/EmpoweredVote/civicsearch/internal/pointcsv"
	"github.com/EmpoweredVote/civicsearch/internal/store"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

const (
	maxBatchPoints = 10000
	// room for maxBatchPoints points with long ids
	maxBatchBytes = maxBatchPoints * 256
)

// Service serves lookups against the datasets of a Catalog.
type Service struct {
	Catalog  *Catalog
	Datasets map[string]config.Dataset // reloadable datasets by name
	DB       *gorm.DB                  // nil disables ?save=true
	Workers  int
	Reporter logging.Reporter
}

func (s *Service) dataset(w http.ResponseWriter, r *http.Request) (*Dataset, bool) {
	name := chi.URLParam(r, "dataset")
	d, ok := s.Catalog.Get(name)
	if !ok {
		http.Error(w, "Unknown dataset: "+name, http.StatusNotFound)
		return nil, false
	}
	return d, true
}

func (s *Service) matcher(d *Dataset) match.Matcher {
	return match.Matcher{NameField: d.Config.NameField, Reporter: s.Reporter}
}

func record(dataset string, results []match.Result, start time.Time) {
	for _, r := range results {
		metrics.LookupsTotal.WithLabelValues(dataset, string(r.Status())).Inc()
	}
	metrics.MatchDurationMs.WithLabelValues(dataset).Observe(float64(time.Since(start).Milliseconds()))
}

func (s *Service) ListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog.List())
}

type lookupResponse struct {
	Dataset string `json:"dataset"`
	pointcsv.Output
}

func parseCoord(r *http.Request, names ...string) (float64, bool) {
	for _, n := range names {
		if v := r.URL.Query().Get(n); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			return f, err == nil
		}
	}
	return 0, false
}

// Lookup answers GET /{dataset}/lookup?lat=..&lng=..
func (s *Service) Lookup(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dataset(w, r)
	if !ok {
		return
	}
	lat, okLat := parseCoord(r, "lat", "latitude")
	lng, okLng := parseCoord(r, "lng", "lon", "longitude")
	if !okLat || !okLng {
		http.Error(w, "lat and lng query parameters are required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	rows := []pointcsv.Row{{Lat: lat, Lon: lng}}
	results := s.matcher(d).Match(pointcsv.Points(rows), d.Features)
	record(d.Config.Name, results, start)
	addServerTiming(w, "match", time.Since(start))

	writeJSON(w, http.StatusOK, lookupResponse{
		Dataset: d.Config.Name,
		Output:  pointcsv.Outputs(rows, results)[0],
	})
}

type matchRequest struct {
	Points []pointcsv.Row `json:"points"`
}

type matchResponse struct {
	Dataset string            `json:"dataset"`
	RunID   string            `json:"run_id,omitempty"`
	Results []pointcsv.Output `json:"results"`
}

// Match answers POST /{dataset}/match with one result per submitted point,
// in submission order.
func (s *Service) Match(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dataset(w, r)
	if !ok {
		return
	}

	var req matchRequest
	body := http.MaxBytesReader(w, r.Body, maxBatchBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Points) > maxBatchPoints {
		http.Error(w, "Too many points: limit is "+strconv.Itoa(maxBatchPoints), http.StatusRequestEntityTooLarge)
		return
	}
	save := r.URL.Query().Get("save") == "true"
	if save && s.DB == nil {
		http.Error(w, "Persistence is not configured", http.StatusBadRequest)
		return
	}

	start := time.Now()
	results, err := s.matcher(d).MatchParallel(r.Context(), pointcsv.Points(req.Points), d.Features, s.Workers)
	if err != nil {
		http.Error(w, "Request cancelled", http.StatusServiceUnavailable)
		return
	}
	record(d.Config.Name, results, start)
	addServerTiming(w, "match", time.Since(start))

	resp := matchResponse{Dataset: d.Config.Name, Results: pointcsv.Outputs(req.Points, results)}
	if save {
		dbStart := time.Now()
		id, err := store.SaveRun(s.DB.WithContext(r.Context()), d.Config.Name, req.Points, results)
		if err != nil {
			logging.OrDiscard(s.Reporter).Infof("save run for %s failed: %v", d.Config.Name, err)
			http.Error(w, "Failed to save results", http.StatusInternalServerError)
			return
		}
		addServerTiming(w, "dbwrite", time.Since(dbStart))
		resp.RunID = id.String()
	}

	writeJSON(w, http.StatusOK, resp)
}

// Reload re-reads a dataset's archive. The previous copy keeps serving
// if the archive is rejected.
func (s *Service) Reload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "dataset")
	cfg, ok := s.Datasets[name]
	if !ok {
		http.Error(w, "Unknown dataset: "+name, http.StatusNotFound)
		return
	}

	start := time.Now()
	d, err := s.Catalog.Load(cfg)
	if err != nil {
		http.Error(w, err.Error(), archiveStatus(err))
		return
	}
	addServerTiming(w, "load", time.Since(start))

	writeJSON(w, http.StatusOK, d.Summary())
}
