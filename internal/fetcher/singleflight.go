package fetcher

import (
	"golang.org/x/sync/singleflight"
)

// Group deduplicates identical in-flight repository fetches so a repo named
// by overlapping populations is fetched once per run.
type Group struct {
	g singleflight.Group
}

func (g *Group) Do(key string, fn func() (interface{}, error)) (interface{}, error, bool) {
	v, err, shared := g.g.Do(key, fn)
	return v, err, shared
}
