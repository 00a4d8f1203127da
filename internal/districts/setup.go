package districts

import (
	"fmt"

	"github.com/EmpoweredVote/civicsearch/internal/config"
	"github.com/EmpoweredVote/civicsearch/internal/logging"
	"gorm.io/gorm"
)

// Init loads every dataset in the catalog file. Any archive that fails to
// load aborts startup; serving a partial set of layers would give wrong
// answers silently.
func Init(cfg config.Config, d *gorm.DB) (*Service, error) {
	rep := logging.New("districts", cfg.Verbose)

	cat, err := config.LoadCatalog(cfg.CatalogPath, cfg.NameField)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		Catalog:  NewCatalog(rep),
		Datasets: map[string]config.Dataset{},
		DB:       d,
		Workers:  cfg.Workers,
		Reporter: rep,
	}
	for _, ds := range cat.Datasets {
		if _, err := svc.Catalog.Load(ds); err != nil {
			return nil, fmt.Errorf("startup: %w", err)
		}
		svc.Datasets[ds.Name] = ds
	}
	return svc, nil
}
