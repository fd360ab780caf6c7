/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/suparena/docstore/errors"
)

// Model binds a model name to the collection storing it.
type Model struct {
	Name       string
	Collection string
	Type       reflect.Type
}

var (
	models   = make(map[string]Model)
	byType   = make(map[reflect.Type]string)
	modelsMu sync.RWMutex
)

// RegisterModel registers a model name for a collection.
// If the name is already registered, it panics to prevent accidental overrides.
func RegisterModel(name, collection string) {
	register(Model{Name: name, Collection: collection})
}

// RegisterModelFor registers a model name for a collection and binds it to the Go type T.
func RegisterModelFor[T any](name, collection string) {
	register(Model{Name: name, Collection: collection, Type: typeOf[T]()})
}

func register(m Model) {
	if m.Name == "" || m.Collection == "" {
		panic("model registry: name and collection are required")
	}

	modelsMu.Lock()
	defer modelsMu.Unlock()

	if _, exists := models[m.Name]; exists {
		panic(fmt.Sprintf("model registry: model %q already registered", m.Name))
	}
	models[m.Name] = m
	if m.Type != nil {
		byType[m.Type] = m.Name
	}
}

// LookupModel returns the registered model with the given name.
func LookupModel(name string) (Model, bool) {
	modelsMu.RLock()
	defer modelsMu.RUnlock()
	m, ok := models[name]
	return m, ok
}

// NameOf returns the model name bound to T, if any.
func NameOf[T any]() (string, bool) {
	modelsMu.RLock()
	defer modelsMu.RUnlock()
	name, ok := byType[typeOf[T]()]
	return name, ok
}

// CollectionOf returns the collection bound to T, if any.
func CollectionOf[T any]() (string, bool) {
	name, ok := NameOf[T]()
	if !ok {
		return "", false
	}
	m, ok := LookupModel(name)
	return m.Collection, ok
}

// Models returns every registered model sorted by name.
func Models() []Model {
	modelsMu.RLock()
	defer modelsMu.RUnlock()

	out := make([]Model, 0, len(models))
	for _, m := range models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CollectionResolver maps a join target to a collection name.
type CollectionResolver interface {
	ResolveCollection(model string) (string, error)
}

// Resolver resolves models through the process registry.
type Resolver struct {
	// AllowRawCollections treats unregistered names as collection names.
	AllowRawCollections bool
}

// ResolveCollection implements CollectionResolver.
func (r Resolver) ResolveCollection(model string) (string, error) {
	if m, ok := LookupModel(model); ok {
		return m.Collection, nil
	}
	if r.AllowRawCollections && model != "" {
		return model, nil
	}
	return "", errors.NewUnknownModelError(model)
}

// StaticResolver resolves from a fixed map, for tests and tools.
type StaticResolver map[string]string

// ResolveCollection implements CollectionResolver.
func (s StaticResolver) ResolveCollection(model string) (string, error) {
	if c, ok := s[model]; ok {
		return c, nil
	}
	return "", errors.NewUnknownModelError(model)
}

func typeOf[T any]() reflect.Type {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
