/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docstore

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/suparena/docstore/datastore"
	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/errors"
)

// Repositories holds the repositories for one payload and document type
// pair, by key.
type Repositories[E any, D entity.Document] struct {
	mu    sync.RWMutex
	repos map[string]datastore.Repository[E, D]
}

// NewRepositories creates an empty Repositories.
func NewRepositories[E any, D entity.Document]() *Repositories[E, D] {
	return &Repositories[E, D]{
		repos: make(map[string]datastore.Repository[E, D]),
	}
}

// Register adds repo under key.
func (rs *Repositories[E, D]) Register(key string, repo datastore.Repository[E, D]) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, exists := rs.repos[key]; exists {
		return fmt.Errorf("repository %q: %w", key, errors.ErrAlreadyExists)
	}
	rs.repos[key] = repo
	return nil
}

// Get returns the repository under key.
func (rs *Repositories[E, D]) Get(key string) (datastore.Repository[E, D], error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	repo, exists := rs.repos[key]
	if !exists {
		return nil, errors.NewNotFoundError("repository", key)
	}
	return repo, nil
}

// Remove deletes the repository under key.
func (rs *Repositories[E, D]) Remove(key string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, exists := rs.repos[key]; !exists {
		return errors.NewNotFoundError("repository", key)
	}
	delete(rs.repos, key)
	return nil
}

// List returns the registered keys, sorted.
func (rs *Repositories[E, D]) List() []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	keys := make([]string, 0, len(rs.repos))
	for k := range rs.repos {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Registry holds a Repositories per type pair, so services can share one
// registry across entities.
type Registry struct {
	mu    sync.Mutex
	byTyp map[typePair]any
}

type typePair struct {
	payload, document reflect.Type
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byTyp: make(map[typePair]any)}
}

// RepositoriesOf returns the Repositories for E and D, creating it if needed.
func RepositoriesOf[E any, D entity.Document](reg *Registry) *Repositories[E, D] {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	key := typePair{
		payload:  reflect.TypeOf((*E)(nil)).Elem(),
		document: reflect.TypeOf((*D)(nil)).Elem(),
	}
	if rs, exists := reg.byTyp[key]; exists {
		return rs.(*Repositories[E, D])
	}
	rs := NewRepositories[E, D]()
	reg.byTyp[key] = rs
	return rs
}

// RegisterRepository registers repo under key for its types.
func RegisterRepository[E any, D entity.Document](reg *Registry, key string, repo datastore.Repository[E, D]) error {
	return RepositoriesOf[E, D](reg).Register(key, repo)
}

// GetRepository returns the repository registered under key for E and D.
func GetRepository[E any, D entity.Document](reg *Registry, key string) (datastore.Repository[E, D], error) {
	return RepositoriesOf[E, D](reg).Get(key)
}

// RemoveRepository removes the repository registered under key for E and D.
func RemoveRepository[E any, D entity.Document](reg *Registry, key string) error {
	return RepositoriesOf[E, D](reg).Remove(key)
}

// ListRepositories lists the keys registered for E and D.
func ListRepositories[E any, D entity.Document](reg *Registry) []string {
	return RepositoriesOf[E, D](reg).List()
}
