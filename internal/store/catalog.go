package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/nguyentranbao-ct/storefront/internal/models"
	"github.com/nguyentranbao-ct/storefront/internal/repository"
	"github.com/nguyentranbao-ct/storefront/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

// Lookup resolves a product id against a catalog.
type Lookup interface {
	FindByID(id models.ProductID) (models.Product, bool)
}

// Catalog is a loaded, read-only product list.
type Catalog struct {
	products []models.Product
	index    map[models.ProductID]int
}

// NewCatalog indexes products by id. Later duplicates are ignored.
func NewCatalog(products []models.Product) *Catalog {
	index := make(map[models.ProductID]int, len(products))
	for i, p := range products {
		if _, ok := index[p.ID]; !ok {
			index[p.ID] = i
		}
	}
	return &Catalog{products: products, index: index}
}

// EmptyCatalog resolves nothing.
func EmptyCatalog() *Catalog {
	return NewCatalog(nil)
}

func (c *Catalog) Products() []models.Product {
	return c.products
}

func (c *Catalog) Len() int {
	return len(c.products)
}

func (c *Catalog) FindByID(id models.ProductID) (models.Product, bool) {
	i, ok := c.index[id]
	if !ok {
		return models.Product{}, false
	}
	return c.products[i], true
}

// Search keeps products whose name or description contains term, ignoring
// case. An empty term returns the whole catalog.
func (c *Catalog) Search(term string) []models.Product {
	if term == "" {
		return c.products
	}
	result := make([]models.Product, 0)
	for _, p := range c.products {
		if p.Matches(term) {
			result = append(result, p)
		}
	}
	return result
}

// ParseCatalog decodes and validates a catalog document: a JSON array of
// products with unique ids, non-negative prices and at least one image.
func ParseCatalog(data []byte, validate *validator.Validate) ([]models.Product, error) {
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[models.ProductID]struct{}, len(products))
	for i, p := range products {
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("product #%d: %w", i, err)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product %s: negative price %s", p.ID, p.Price)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("product %s: duplicate id", p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Specifications == nil {
			products[i].Specifications = models.NewSpecifications()
		}
	}
	return products, nil
}

// loadTimeout bounds one shared catalog fetch, retries included.
const loadTimeout = time.Minute

// CatalogStore loads the catalog from its source on first use and caches a
// successful result for the process lifetime. A failed load is not cached,
// so the next page load fetches again. Concurrent loads share one fetch.
type CatalogStore struct {
	source   repository.CatalogSource
	validate *validator.Validate
	metrics  *prometheus.HistogramVec

	group   singleflight.Group
	mu      sync.RWMutex
	catalog *Catalog
}

func NewCatalogStore(source repository.CatalogSource, validate *validator.Validate) (*CatalogStore, error) {
	metrics, err := util.GetHistogramVec("storefront_catalog_load", "status")
	if err != nil {
		return nil, fmt.Errorf("get histogram vec: %w", err)
	}
	return &CatalogStore{
		source:   source,
		validate: validate,
		metrics:  metrics,
	}, nil
}

// Load returns the cached catalog or fetches it. Failures are *models.LoadError.
func (s *CatalogStore) Load(ctx context.Context) (*Catalog, error) {
	s.mu.RLock()
	cached := s.catalog
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	// the shared fetch outlives any single caller; each caller still stops
	// waiting when its own context is done
	ch := s.group.DoChan("catalog", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.fetch(fetchCtx)
	})
	select {
	case <-ctx.Done():
		return nil, &models.LoadError{Source: s.source.Name(), Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Catalog), nil
	}
}

func (s *CatalogStore) fetch(ctx context.Context) (catalog *Catalog, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		s.metrics.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}()

	s.mu.RLock()
	cached := s.catalog
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	data, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, &models.LoadError{Source: s.source.Name(), Err: err}
	}
	products, err := ParseCatalog(data, s.validate)
	if err != nil {
		return nil, &models.LoadError{Source: s.source.Name(), Err: err}
	}

	catalog = NewCatalog(products)
	s.mu.Lock()
	s.catalog = catalog
	s.mu.Unlock()
	return catalog, nil
}

// LoadOrEmpty is Load for mutations that only need lookups: on failure it
// returns an empty catalog along with the error, so catalog-dependent
// actions become no-ops.
func (s *CatalogStore) LoadOrEmpty(ctx context.Context) (*Catalog, error) {
	catalog, err := s.Load(ctx)
	if err != nil {
		return EmptyCatalog(), err
	}
	return catalog, nil
}
