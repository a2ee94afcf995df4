package rss

import (
	"fmt"
	"slices"
	"sync"
)

var (
	loaders   = make(map[string]SourceLoader)
	loadersMu sync.RWMutex
)

func RegisterLoader(loaderType string, loader SourceLoader) {
	loadersMu.Lock()
	defer loadersMu.Unlock()
	loaders[loaderType] = loader
}

func GetLoader(loaderType string) (SourceLoader, error) {
	loadersMu.RLock()
	defer loadersMu.RUnlock()

	loader, exists := loaders[loaderType]
	if !exists {
		return nil, fmt.Errorf("unknown source type %q (known: %v)", loaderType, loaderTypesLocked())
	}

	return loader, nil
}

// LoaderTypes lists the registered source types, sorted.
func LoaderTypes() []string {
	loadersMu.RLock()
	defer loadersMu.RUnlock()
	return loaderTypesLocked()
}

func loaderTypesLocked() []string {
	names := make([]string, 0, len(loaders))
	for name := range loaders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
