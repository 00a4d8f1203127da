package districts

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/EmpoweredVote/civicsearch/internal/config"
	"github.com/EmpoweredVote/civicsearch/internal/geo"
	"github.com/EmpoweredVote/civicsearch/internal/logging"
	"github.com/EmpoweredVote/civicsearch/internal/metrics"
	"github.com/EmpoweredVote/civicsearch/internal/tiger"
)

// Dataset is a boundary layer held in memory for lookups. It is never
// modified after it is published to the catalog.
type Dataset struct {
	Config   config.Dataset
	Features []geo.Feature
	LoadedAt time.Time
}

// Summary describes a loaded dataset.
type Summary struct {
	Name     string    `json:"name"`
	MTFCC    string    `json:"mtfcc,omitempty"`
	Kind     string    `json:"kind,omitempty"`
	Regions  int       `json:"regions"`
	Named    int       `json:"named"`
	LoadedAt time.Time `json:"loaded_at"`
}

func (d *Dataset) Summary() Summary {
	named := 0
	for _, f := range d.Features {
		if _, ok := f.Name(d.Config.NameField); ok {
			named++
		}
	}
	return Summary{
		Name:     d.Config.Name,
		MTFCC:    d.Config.MTFCC,
		Kind:     Kind(d.Config.MTFCC),
		Regions:  len(d.Features),
		Named:    named,
		LoadedAt: d.LoadedAt,
	}
}

// Catalog holds the loaded datasets by name.
type Catalog struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
	rep      logging.Reporter
}

func NewCatalog(rep logging.Reporter) *Catalog {
	return &Catalog{datasets: map[string]*Dataset{}, rep: logging.OrDiscard(rep)}
}

// Load reads the dataset's archive and publishes it, replacing any earlier
// copy. On failure the earlier copy stays in place.
func (c *Catalog) Load(cfg config.Dataset) (*Dataset, error) {
	ds, err := tiger.Open(cfg.Archive, c.rep)
	if err != nil {
		metrics.DatasetLoadFailTotal.WithLabelValues(cfg.Name).Inc()
		return nil, fmt.Errorf("load dataset %s: %w", cfg.Name, err)
	}
	return c.Put(cfg, ds.Features), nil
}

// Put publishes already decoded features under cfg.Name.
func (c *Catalog) Put(cfg config.Dataset, features []geo.Feature) *Dataset {
	d := &Dataset{Config: cfg, Features: features, LoadedAt: time.Now().UTC()}

	c.mu.Lock()
	c.datasets[cfg.Name] = d
	c.mu.Unlock()

	metrics.DatasetRegions.WithLabelValues(cfg.Name).Set(float64(len(features)))
	c.rep.Infof("dataset %s ready with %d regions", cfg.Name, len(features))
	return d
}

func (c *Catalog) Get(name string) (*Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.datasets[name]
	return d, ok
}

// List returns summaries sorted by dataset name.
func (c *Catalog) List() []Summary {
	c.mu.RLock()
	out := make([]Summary, 0, len(c.datasets))
	for _, d := range c.datasets {
		out = append(out, d.Summary())
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
