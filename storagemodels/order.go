/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Paging is a limit/offset window. Zero values mean no limit and no offset.
type Paging struct {
	Limit  int64
	Offset int64
}

// OrderBy sorts on a single field.
type OrderBy struct {
	Field     string
	Direction Direction
}

// Order is a list of sort keys in priority order.
type Order []OrderBy

// OrderFrom builds an Order from a field to direction map, ordering keys by
// name since map order carries no priority.
func OrderFrom(m map[string]Direction) Order {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	o := make(Order, 0, len(keys))
	for _, k := range keys {
		o = append(o, OrderBy{Field: k, Direction: m[k]})
	}
	return o
}

// Sort returns the store sort document, or nil when empty.
func (o Order) Sort() bson.D {
	if len(o) == 0 {
		return nil
	}
	d := make(bson.D, 0, len(o))
	for _, by := range o {
		dir := 1
		if strings.EqualFold(string(by.Direction), string(Desc)) {
			dir = -1
		}
		d = append(d, bson.E{Key: by.Field, Value: dir})
	}
	return d
}

// Projection maps field names to inclusion (true) or exclusion (false).
type Projection map[string]bool

// ParseSelect parses a space separated field list. Fields prefixed with "-"
// are excluded, all others included.
func ParseSelect(s string) Projection {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	p := make(Projection, len(fields))
	for _, f := range fields {
		if strings.HasPrefix(f, "-") {
			p[f[1:]] = false
			continue
		}
		p[strings.TrimPrefix(f, "+")] = true
	}
	return p
}

// Inclusive reports whether the projection lists fields to keep.
func (p Projection) Inclusive() bool {
	for k, v := range p {
		if v && k != "_id" {
			return true
		}
	}
	return false
}

// Document returns the store projection document, or nil when empty.
func (p Projection) Document() bson.M {
	if len(p) == 0 {
		return nil
	}
	m := make(bson.M, len(p))
	for k, v := range p {
		if v {
			m[k] = 1
		} else {
			m[k] = 0
		}
	}
	return m
}

// With returns a copy that also includes fields. Only meaningful on an
// inclusive projection.
func (p Projection) With(fields ...string) Projection {
	out := make(Projection, len(p)+len(fields))
	for k, v := range p {
		out[k] = v
	}
	for _, f := range fields {
		if _, ok := out[f]; !ok {
			out[f] = true
		}
	}
	return out
}
