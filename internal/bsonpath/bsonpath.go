/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package bsonpath reads and writes dotted field paths in bson.M documents.
package bsonpath

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Get returns the value at path.
func Get(doc bson.M, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = doc
	for _, p := range parts {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set writes v at path, creating intermediate documents.
func Set(doc bson.M, path string, v any) {
	parts := strings.Split(path, ".")
	m := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := asMap(m[p])
		if !ok {
			next = bson.M{}
		}
		m[p] = next
		m = next
	}
	m[parts[len(parts)-1]] = v
}

// Unset removes the value at path if present.
func Unset(doc bson.M, path string) {
	parts := strings.Split(path, ".")
	m := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := asMap(m[p])
		if !ok {
			return
		}
		m[p] = next
		m = next
	}
	delete(m, parts[len(parts)-1])
}

func asMap(v any) (bson.M, bool) {
	switch t := v.(type) {
	case bson.M:
		return t, true
	case map[string]any:
		return bson.M(t), true
	case bson.D:
		m := make(bson.M, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return m, true
	}
	return nil, false
}
