package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/EmpoweredVote/civicsearch/internal/geo"
	"github.com/goccy/go-yaml"
)

// Common errors
var (
	ErrNoDatasets       = errors.New("no datasets configured: set CIVICSEARCH_DATASETS")
	ErrDuplicateDataset = errors.New("duplicate dataset name")
	ErrMissingArchive   = errors.New("dataset has no archive path")
)

// Config holds service configuration.
type Config struct {
	Port        string
	DatabaseURL string

	// Path to the dataset catalog YAML.
	CatalogPath string

	NameField      string
	RateLimit      float64
	AdminTokenHash string
	Workers        int
	Verbose        bool
}

// LoadFromEnv loads configuration from environment variables.
//
// Environment variables:
//   - PORT: listen port (default: 5050)
//   - DATABASE_URL: Postgres DSN; persistence is disabled when empty
//   - CIVICSEARCH_DATASETS: path to the dataset catalog YAML
//   - CIVICSEARCH_NAME_FIELD: attribute holding district names (default: NAMELSAD)
//   - CIVICSEARCH_RATE_LIMIT: requests per second, 0 disables (default: 20)
//   - CIVICSEARCH_WORKERS: matcher goroutines, 0 means GOMAXPROCS
//   - CIVICSEARCH_VERBOSE: "true" or "1" enables debug logging
//   - ADMIN_TOKEN_HASH: bcrypt hash of the token allowed to reload datasets
func LoadFromEnv() Config {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5050"
	}

	nameField := strings.TrimSpace(os.Getenv("CIVICSEARCH_NAME_FIELD"))
	if nameField == "" {
		nameField = geo.DefaultNameField
	}

	rate := 20.0
	if v, err := strconv.ParseFloat(os.Getenv("CIVICSEARCH_RATE_LIMIT"), 64); err == nil && v >= 0 {
		rate = v
	}

	workers, _ := strconv.Atoi(os.Getenv("CIVICSEARCH_WORKERS"))

	verbose, _ := strconv.ParseBool(os.Getenv("CIVICSEARCH_VERBOSE"))

	return Config{
		Port:           port,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		CatalogPath:    strings.TrimSpace(os.Getenv("CIVICSEARCH_DATASETS")),
		NameField:      nameField,
		RateLimit:      rate,
		AdminTokenHash: os.Getenv("ADMIN_TOKEN_HASH"),
		Workers:        workers,
		Verbose:        verbose,
	}
}

// Validate checks that the service has something to serve.
func (c Config) Validate() error {
	if c.CatalogPath == "" {
		return ErrNoDatasets
	}
	if c.Workers < 0 {
		return fmt.Errorf("CIVICSEARCH_WORKERS must not be negative, got %d", c.Workers)
	}
	return nil
}

// Dataset is one boundary archive listed in the catalog.
type Dataset struct {
	Name      string `yaml:"name"`
	Archive   string `yaml:"archive"`
	NameField string `yaml:"name_field"`
	MTFCC     string `yaml:"mtfcc"`
}

// Catalog is the YAML dataset list:
//
//	datasets:
//	  - name: ma-house
//	    archive: data/tl_2019_25_sldl.zip
//	    mtfcc: G5220
type Catalog struct {
	Datasets []Dataset `yaml:"datasets"`
}

// LoadCatalog reads and validates a catalog file. Relative archive paths
// are resolved against the catalog's directory, and datasets without a
// name field inherit defaultNameField.
func LoadCatalog(path, defaultNameField string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(c.Datasets) == 0 {
		return nil, ErrNoDatasets
	}

	dir := filepath.Dir(path)
	seen := map[string]bool{}
	for i := range c.Datasets {
		d := &c.Datasets[i]
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			base := filepath.Base(d.Archive)
			d.Name = strings.TrimSuffix(base, filepath.Ext(base))
		}
		if d.Archive == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingArchive, d.Name)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDataset, d.Name)
		}
		seen[d.Name] = true

		if !filepath.IsAbs(d.Archive) {
			d.Archive = filepath.Join(dir, d.Archive)
		}
		if d.NameField == "" {
			d.NameField = defaultNameField
		}
	}

	return &c, nil
}
