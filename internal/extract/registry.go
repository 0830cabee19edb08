package extract

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	registry = make(map[string]Detector)
	mu       sync.RWMutex
)

func Register(d Detector) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[d.ID()]; exists {
		panic(fmt.Sprintf("detector %s already registered", d.ID()))
	}
	registry[d.ID()] = d
}

func List() []Detector {
	mu.RLock()
	defer mu.RUnlock()
	var detectors []Detector
	for _, d := range registry {
		detectors = append(detectors, d)
	}
	sort.Slice(detectors, func(i, j int) bool {
		return detectors[i].ID() < detectors[j].ID()
	})
	return detectors
}

// Resolve selects detectors by comma-separated ID list; an empty selector
// selects all of them.
func Resolve(selector string) ([]Detector, error) {
	mu.RLock()
	defer mu.RUnlock()

	if selector == "" {
		return List(), nil
	}

	ids := strings.Split(selector, ",")
	var selected []Detector
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if d, ok := registry[id]; ok {
			selected = append(selected, d)
		} else {
			return nil, fmt.Errorf("detector not found: %s", id)
		}
	}
	return selected, nil
}
