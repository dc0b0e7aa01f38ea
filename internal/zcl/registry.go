package zcl

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrUnknownAttribute is returned when an attribute path does not name an
// attribute of a registered cluster.
var ErrUnknownAttribute = errors.New("unknown attribute")

// Registry holds all known ZCL cluster definitions.
type Registry struct {
	mu       sync.RWMutex
	clusters map[uint16]*ClusterDef
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		clusters: make(map[uint16]*ClusterDef),
		logger:   logger,
	}
}

// Register adds a cluster definition to the registry. A second definition
// with the same ID replaces the first.
func (r *Registry) Register(c ClusterDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clusters[c.ID]; ok {
		r.logger.Warn("cluster replaced", "id", fmt.Sprintf("0x%04X", c.ID), "name", c.Name)
	}
	clone := c
	r.clusters[c.ID] = &clone
	r.logger.Debug("cluster registered", "id", fmt.Sprintf("0x%04X", c.ID), "name", c.Name)
}

// Get returns a cluster definition by ID, or nil if not found.
// Definitions are shared; callers must not modify them.
func (r *Registry) Get(id uint16) *ClusterDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clusters[id]
}

// Len returns the number of registered clusters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clusters)
}

// ResolveAttr returns the definition of the named attribute in a cluster.
func (r *Registry) ResolveAttr(clusterID uint16, name string) (*AttributeDef, error) {
	c := r.Get(clusterID)
	if c == nil {
		return nil, fmt.Errorf("cluster 0x%04X: %w", clusterID, ErrUnknownAttribute)
	}
	attr := c.FindAttributeByName(name)
	if attr == nil {
		return nil, fmt.Errorf("%s.%s: %w", c.Name, name, ErrUnknownAttribute)
	}
	return attr, nil
}

// AttrName returns the attribute name for an ID, falling back to hex.
func (r *Registry) AttrName(clusterID, attrID uint16) string {
	if c := r.Get(clusterID); c != nil {
		if a := c.FindAttribute(attrID); a != nil {
			return a.Name
		}
	}
	return fmt.Sprintf("0x%04X", attrID)
}
