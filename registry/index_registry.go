/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"
)

// IndexKey is one field of a compound index. Order is 1 or -1.
type IndexKey struct {
	Field string `yaml:"field"`
	Order int    `yaml:"order"`
}

// IndexSpec declares an index for a collection.
type IndexSpec struct {
	Name                    string         `yaml:"name"`
	Keys                    []IndexKey     `yaml:"keys"`
	Unique                  bool           `yaml:"unique,omitempty"`
	Sparse                  bool           `yaml:"sparse,omitempty"`
	ExpireAfterSeconds      *int32         `yaml:"expireAfterSeconds,omitempty"`
	PartialFilterExpression map[string]any `yaml:"partialFilterExpression,omitempty"`
}

// Model converts the spec into a driver index model.
func (s IndexSpec) Model() mongo.IndexModel {
	keys := make(bson.D, 0, len(s.Keys))
	for _, k := range s.Keys {
		order := k.Order
		if order == 0 {
			order = 1
		}
		keys = append(keys, bson.E{Key: k.Field, Value: order})
	}

	opts := options.Index()
	if s.Name != "" {
		opts.SetName(s.Name)
	}
	if s.Unique {
		opts.SetUnique(true)
	}
	if s.Sparse {
		opts.SetSparse(true)
	}
	if s.ExpireAfterSeconds != nil {
		opts.SetExpireAfterSeconds(*s.ExpireAfterSeconds)
	}
	if len(s.PartialFilterExpression) > 0 {
		opts.SetPartialFilterExpression(bson.M(s.PartialFilterExpression))
	}
	return mongo.IndexModel{Keys: keys, Options: opts}
}

// Validate checks that the spec can be created.
func (s IndexSpec) Validate() error {
	if len(s.Keys) == 0 {
		return fmt.Errorf("index %q has no keys", s.Name)
	}
	for _, k := range s.Keys {
		if k.Field == "" {
			return fmt.Errorf("index %q has a key without field", s.Name)
		}
		if k.Order != 0 && k.Order != 1 && k.Order != -1 {
			return fmt.Errorf("index %q: order of %q must be 1 or -1", s.Name, k.Field)
		}
	}
	return nil
}

var (
	indexRegistry = make(map[string][]IndexSpec)
	mu            sync.RWMutex
)

// RegisterIndexes appends index specs for a collection.
func RegisterIndexes(collection string, specs ...IndexSpec) {
	mu.Lock()
	defer mu.Unlock()
	indexRegistry[collection] = append(indexRegistry[collection], specs...)
}

// RegisterIndexesFor registers specs on the collection bound to T.
// It panics when T has no registered model.
func RegisterIndexesFor[T any](specs ...IndexSpec) {
	coll, ok := CollectionOf[T]()
	if !ok {
		panic(fmt.Sprintf("index registry: no model registered for %s", typeOf[T]()))
	}
	RegisterIndexes(coll, specs...)
}

// GetIndexes returns the specs registered for a collection.
func GetIndexes(collection string) ([]IndexSpec, bool) {
	mu.RLock()
	defer mu.RUnlock()
	specs, ok := indexRegistry[collection]
	return append([]IndexSpec(nil), specs...), ok
}

// Indexes returns a copy of every registered spec keyed by collection.
func Indexes() map[string][]IndexSpec {
	mu.RLock()
	defer mu.RUnlock()

	out := make(map[string][]IndexSpec, len(indexRegistry))
	for c, specs := range indexRegistry {
		out[c] = append([]IndexSpec(nil), specs...)
	}
	return out
}

// Collections returns the collections with registered indexes, sorted.
func Collections(idx map[string][]IndexSpec) []string {
	out := make([]string, 0, len(idx))
	for c := range idx {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// indexFile is the YAML layout of an index file:
//
//	collections:
//	  countries:
//	    - name: alpha2Code_unique
//	      unique: true
//	      keys:
//	        - field: alpha2Code
//	          order: 1
type indexFile struct {
	Collections map[string][]IndexSpec `yaml:"collections"`
}

// ParseIndexes decodes an index file.
func ParseIndexes(data []byte) (map[string][]IndexSpec, error) {
	var f indexFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse index file: %w", err)
	}
	for coll, specs := range f.Collections {
		for _, s := range specs {
			if err := s.Validate(); err != nil {
				return nil, fmt.Errorf("collection %s: %w", coll, err)
			}
		}
	}
	if f.Collections == nil {
		f.Collections = map[string][]IndexSpec{}
	}
	return f.Collections, nil
}

// LoadIndexFile reads and decodes an index file.
func LoadIndexFile(path string) (map[string][]IndexSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}
	return ParseIndexes(data)
}
