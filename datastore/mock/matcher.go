/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/internal/bsonpath"
)

// Matches reports whether doc satisfies filter. Supported operators are
// $and, $or, $nor, $eq, $ne, $in, $nin, $exists, $gt, $gte, $lt and $lte.
// Unsupported operators never match.
func Matches(doc bson.M, filter bson.M) bool {
	for key, cond := range filter {
		switch key {
		case "$and":
			for _, sub := range list(cond) {
				if f, ok := asDoc(sub); !ok || !Matches(doc, f) {
					return false
				}
			}
		case "$or":
			hit := false
			for _, sub := range list(cond) {
				if f, ok := asDoc(sub); ok && Matches(doc, f) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		case "$nor":
			for _, sub := range list(cond) {
				if f, ok := asDoc(sub); ok && Matches(doc, f) {
					return false
				}
			}
		default:
			v, present := bsonpath.Get(doc, key)
			if !matchField(v, present, cond) {
				return false
			}
		}
	}
	return true
}

func matchField(v any, present bool, cond any) bool {
	if ops, ok := operators(cond); ok {
		for op, arg := range ops {
			if !matchOp(v, present, op, arg) {
				return false
			}
		}
		return true
	}
	if cond == nil {
		return !present || v == nil
	}
	return present && equalOrContains(v, cond)
}

func matchOp(v any, present bool, op string, arg any) bool {
	switch op {
	case "$eq":
		return matchField(v, present, arg)
	case "$ne":
		return !matchField(v, present, arg)
	case "$in":
		for _, a := range list(arg) {
			if matchField(v, present, a) {
				return true
			}
		}
		return false
	case "$nin":
		return !matchOp(v, present, "$in", arg)
	case "$exists":
		want, _ := arg.(bool)
		return present == want
	case "$gt", "$gte", "$lt", "$lte":
		if !present {
			return false
		}
		c, ok := compare(v, arg)
		if !ok {
			return false
		}
		switch op {
		case "$gt":
			return c > 0
		case "$gte":
			return c >= 0
		case "$lt":
			return c < 0
		default:
			return c <= 0
		}
	}
	return false
}

// operators returns cond as an operator document when every key starts with $.
func operators(cond any) (bson.M, bool) {
	m, ok := asDoc(cond)
	if !ok || len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return m, true
}

func asDoc(v any) (bson.M, bool) {
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

// list returns the elements of any slice value.
func list(v any) []any {
	switch t := v.(type) {
	case bson.A:
		return t
	case []any:
		return t
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func isList(v any) bool {
	if _, ok := v.([]byte); ok {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array)
}

// equalOrContains is equality, or membership when v is an array.
func equalOrContains(v, want any) bool {
	if equal(v, want) {
		return true
	}
	if isList(v) && !isList(want) {
		for _, e := range list(v) {
			if equal(e, want) {
				return true
			}
		}
	}
	return false
}

func equal(a, b any) bool {
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(normalize(a), normalize(b))
}

// compare orders numbers, strings and times.
func compare(a, b any) (int, bool) {
	a, b = normalize(a), normalize(b)
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func normalize(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC().Truncate(time.Millisecond)
	case primitive.M:
		return map[string]any(t)
	case primitive.A:
		return []any(t)
	}
	return v
}

func deleted(doc bson.M) bool {
	_, ok := doc[entity.DeletedAtField]
	return ok
}
