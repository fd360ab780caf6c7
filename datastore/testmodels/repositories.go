/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package testmodels

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/suparena/docstore/datastore/mongodb"
	"github.com/suparena/docstore/registry"
)

func collection[T any](db *mongo.Database) *mongo.Collection {
	name, _ := registry.CollectionOf[T]()
	return db.Collection(name)
}

func NewCountryRepository(db *mongo.Database) (*mongodb.Repository[Country, Country], error) {
	return mongodb.New[Country, Country](collection[Country](db))
}

func NewRoleRepository(db *mongo.Database) (*mongodb.Repository[Role, Role], error) {
	return mongodb.New[Role, Role](collection[Role](db))
}

// NewUserRepository reads users as UserView and resolves UserJoins by
// default.
func NewUserRepository(db *mongo.Database) (*mongodb.Repository[User, UserView], error) {
	return mongodb.New[User, UserView](collection[User](db), mongodb.WithDefaultJoin(UserJoins()...))
}
