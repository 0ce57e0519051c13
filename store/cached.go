package store

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

type indexkey struct {
	objtype string
	name    string
}

// Cached is a DocuStore that memoizes object indexes per build. Published
// builds don't change, so entries only go away when a build is saved
// again or evicted explicitly.
type Cached struct {
	DocuStore

	mu      sync.RWMutex
	indexes map[BuildIdentifier]map[indexkey]ObjectTreeNode
	// generations counts the evictions of every build. A load that
	// overlapped an eviction is not cached.
	generations map[BuildIdentifier]uint64
}

// NewCached wraps st with an object index cache.
func NewCached(st DocuStore) *Cached {
	return &Cached{
		DocuStore:   st,
		indexes:     map[BuildIdentifier]map[indexkey]ObjectTreeNode{},
		generations: map[BuildIdentifier]uint64{},
	}
}

// LoadObjectIndex implements the DocuStore interface. Misses aren't
// cached.
func (st *Cached) LoadObjectIndex(id BuildIdentifier, objtype, name string) (ObjectTreeNode, error) {
	key := indexkey{objtype: objtype, name: name}

	st.mu.RLock()
	idx, ok := st.indexes[id][key]
	gen := st.generations[id]
	st.mu.RUnlock()

	if ok {
		return idx, nil
	}

	idx, err := st.DocuStore.LoadObjectIndex(id, objtype, name)
	if err != nil {
		return idx, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.generations[id] != gen {
		logger.WithFields(log.Fields{
			"branch": id.Branch,
			"build":  id.Build,
		}).Debug("build evicted while loading object index, not caching")

		return idx, nil
	}

	if _, ok := st.indexes[id]; !ok {
		st.indexes[id] = map[indexkey]ObjectTreeNode{}
	}
	st.indexes[id][key] = idx

	return idx, nil
}

// SaveBuild implements the DocuStore interface.
func (st *Cached) SaveBuild(b *Build) error {
	err := st.DocuStore.SaveBuild(b)
	st.Evict(b.BuildIdentifier)

	return err
}

// Evict drops everything cached for a build.
func (st *Cached) Evict(id BuildIdentifier) {
	logger.WithFields(log.Fields{
		"branch": id.Branch,
		"build":  id.Build,
	}).Debug("evicting cached object indexes")

	st.mu.Lock()
	defer st.mu.Unlock()

	delete(st.indexes, id)
	st.generations[id]++
}
