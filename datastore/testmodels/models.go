/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package testmodels holds the entities used by tests and the integration
// suite: users that reference a role and countries.
package testmodels

import (
	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/registry"
	"github.com/suparena/docstore/storagemodels"
)

const (
	CountryModel = "Country"
	RoleModel    = "Role"
	UserModel    = "User"
)

type Country struct {
	entity.Base `bson:",inline"`

	// Name of the country.
	// Required: true
	Name string `bson:"name" json:"name" validate:"required"`

	// ISO 3166-1 alpha-2 code.
	// Required: true
	Alpha2Code string `bson:"alpha2Code" json:"alpha2Code" validate:"required,len=2"`

	// International dialling prefix, e.g. +56.
	DialCode string `bson:"dialCode,omitempty" json:"dialCode,omitempty"`
}

type Role struct {
	entity.Base `bson:",inline"`

	// Name of the role.
	// Required: true
	Name string `bson:"name" json:"name" validate:"required"`

	Permissions []string `bson:"permissions,omitempty" json:"permissions,omitempty"`
}

type MobileNumber struct {
	CountryID string `bson:"countryId,omitempty" json:"countryId,omitempty"`

	// Required: true
	Number string `bson:"number" json:"number" validate:"required,numeric"`

	// Resolved from CountryID by joins, never stored.
	Country *Country `bson:"country,omitempty" json:"country,omitempty"`
}

type User struct {
	entity.Base `bson:",inline"`

	// Required: true
	Name string `bson:"name" json:"name" validate:"required"`

	// Required: true
	// Format: email
	Email string `bson:"email" json:"email" validate:"required,email"`

	RoleID    string `bson:"roleId,omitempty" json:"roleId,omitempty"`
	CountryID string `bson:"countryId,omitempty" json:"countryId,omitempty"`

	MobileNumber *MobileNumber `bson:"mobileNumber,omitempty" json:"mobileNumber,omitempty"`
}

// UserView is a User with its relations resolved.
type UserView struct {
	User `bson:",inline"`

	Role    *Role    `bson:"role,omitempty" json:"role,omitempty"`
	Country *Country `bson:"country,omitempty" json:"country,omitempty"`
}

// UserJoins are the default relations of a user.
func UserJoins() []storagemodels.JoinDescriptor {
	return []storagemodels.JoinDescriptor{
		{Field: "role", LocalKey: "roleId", ForeignKey: entity.IDField, Model: RoleModel, JustOne: true},
		{Field: "country", LocalKey: "countryId", ForeignKey: entity.IDField, Model: CountryModel, JustOne: true},
		{Field: "mobileNumber.country", LocalKey: "mobileNumber.countryId", ForeignKey: entity.IDField, Model: CountryModel, JustOne: true},
	}
}

func init() {
	registry.RegisterModelFor[Country](CountryModel, "countries")
	registry.RegisterModelFor[Role](RoleModel, "roles")
	registry.RegisterModelFor[User](UserModel, "users")

	registry.RegisterIndexesFor[Country](
		registry.IndexSpec{Name: "alpha2Code_unique", Keys: []registry.IndexKey{{Field: "alpha2Code", Order: 1}}, Unique: true},
	)
	registry.RegisterIndexesFor[Role](
		registry.IndexSpec{Name: "name_unique", Keys: []registry.IndexKey{{Field: "name", Order: 1}}, Unique: true},
	)
	registry.RegisterIndexesFor[User](
		registry.IndexSpec{Name: "email_unique", Keys: []registry.IndexKey{{Field: "email", Order: 1}}, Unique: true},
		registry.IndexSpec{Name: "roleId_1", Keys: []registry.IndexKey{{Field: "roleId", Order: 1}}},
		registry.IndexSpec{
			Name:                    "deletedAt_ttl",
			Keys:                    []registry.IndexKey{{Field: "deletedAt", Order: 1}},
			ExpireAfterSeconds:      ptr(int32(30 * 24 * 3600)),
			PartialFilterExpression: map[string]any{"deletedAt": map[string]any{"$exists": true}},
		},
	)
}

func ptr[T any](v T) *T { return &v }
