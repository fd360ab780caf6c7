/*
Package entity defines the common shape shared by every stored record.

Every document carries an immutable identity, creation and modification
timestamps, and a nullable soft-delete marker. Embed Base inline to get all
four fields and the accessors the repositories rely on:

	type Country struct {
	    entity.Base `bson:",inline"`
	    Name        string `bson:"name" validate:"required"`
	    Alpha2Code  string `bson:"alpha2Code" validate:"required,len=2"`
	}

A record whose deletedAt field is absent is active. Repositories never return
a record with deletedAt set unless the caller asks for deleted records
explicitly.
*/
package entity
