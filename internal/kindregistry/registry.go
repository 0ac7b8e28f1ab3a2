// Package kindregistry loads a display-name table for the numeric kind IDs
// a pool's payload predicates dispatch on.
package kindregistry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is one kind definition.
type Entry struct {
	ID          uint32 `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type entryListFile struct {
	Kinds []Entry `yaml:"kinds"`
}

// Registry maps numeric kind IDs to their display entry.
type Registry struct {
	kinds map[uint32]Entry
}

// Get returns the entry for id, or (Entry{}, false) if id is unregistered.
func (r *Registry) Get(id uint32) (Entry, bool) {
	e, ok := r.kinds[id]
	return e, ok
}

// Name returns the display name for id, or a numeric fallback if id is
// unregistered.
func (r *Registry) Name(id uint32) string {
	if e, ok := r.kinds[id]; ok {
		return e.Name
	}
	return fmt.Sprintf("kind#%d", id)
}

// Count returns the number of registered kinds.
func (r *Registry) Count() int {
	return len(r.kinds)
}

// Load reads a kind registry from a YAML file shaped like:
//
//	kinds:
//	  - id: 1
//	    name: projectile
//	    description: short-lived attack entities
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read kind registry %s: %w", path, err)
	}

	var f entryListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse kind registry %s: %w", path, err)
	}

	r := &Registry{kinds: make(map[uint32]Entry, len(f.Kinds))}
	for _, e := range f.Kinds {
		r.kinds[e.ID] = e
	}
	return r, nil
}
