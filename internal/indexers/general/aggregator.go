package general

import (
	"github.com/zilezarach/torscrape-api/internal/indexers"
	"github.com/zilezarach/torscrape-api/internal/indexers/general/piratebay"
	"github.com/zilezarach/torscrape-api/internal/indexers/general/x1337"
	"go.uber.org/zap"
)

// Route names the adapters are registered under
const (
	Site1337x     = "1337x"
	SitePirateBay = "pirate-bay"
)

// Mirrors overrides adapter base URLs; empty fields keep the defaults
type Mirrors struct {
	X1337     string
	PirateBay string
}

// Registry maps route names to their adapters. It is built once and read
// concurrently afterwards.
type Registry struct {
	adapters map[string]indexers.Adapter
	names    []string
}

func NewRegistry(mirrors Mirrors, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{adapters: make(map[string]indexers.Adapter)}
	r.register(Site1337x, x1337.NewIndexer(mirrors.X1337, logger))
	r.register(SitePirateBay, piratebay.NewIndexer(mirrors.PirateBay, logger))
	logger.Info("Site adapters loaded", zap.Strings("sites", r.names))
	return r
}

func (r *Registry) register(name string, adapter indexers.Adapter) {
	r.adapters[name] = adapter
	r.names = append(r.names, name)
}

// Get returns the adapter registered under name
func (r *Registry) Get(name string) (indexers.Adapter, bool) {
	adapter, ok := r.adapters[name]
	return adapter, ok
}

// Names lists registered route names in registration order
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
