/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package bsonpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestGet(t *testing.T) {
	doc := bson.M{"a": 1, "mobile": bson.M{"country": "cl"}, "d": bson.D{{Key: "x", Value: 2}}}

	v, ok := Get(doc, "a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = Get(doc, "mobile.country")
	assert.True(t, ok)
	assert.Equal(t, "cl", v)

	v, ok = Get(doc, "d.x")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = Get(doc, "mobile.number")
	assert.False(t, ok)
	_, ok = Get(doc, "a.b")
	assert.False(t, ok)
}

func TestSetAndUnset(t *testing.T) {
	doc := bson.M{"a": 1}

	Set(doc, "b.c", "x")
	assert.Equal(t, bson.M{"a": 1, "b": bson.M{"c": "x"}}, doc)

	Set(doc, "a", 2)
	assert.Equal(t, 2, doc["a"])

	Unset(doc, "b.c")
	assert.Equal(t, bson.M{"a": 2, "b": bson.M{}}, doc)

	Unset(doc, "missing.path")
	Unset(doc, "a")
	assert.NotContains(t, doc, "a")
}
