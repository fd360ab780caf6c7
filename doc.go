/*
Package docstore is a generic document repository layer for MongoDB.

Every collection gets the same contract, datastore.Repository, implemented
once by the mongodb engine and once in memory by the mock package:
  - Soft deletion through a deletedAt timestamp, hidden from reads by default
  - Joins declared as descriptors and resolved with $lookup stages
  - Paging, ordering and projection on list reads
  - An atomic fetch-and-touch for claiming documents
  - Bulk mutations and raw aggregation pipelines
  - Cursor streaming with progress reporting

The database package builds the driver client from configuration and the
registry package maps model names to collections and indexes.

Basic Usage:

	cfg, _ := database.Load()
	db, _ := database.Connect(ctx, *cfg, database.WithLogger(logger))

	users, _ := mongodb.New[User, UserView](db.Collection("users"),
		mongodb.WithDefaultJoin(storagemodels.JoinDescriptor{
			Field: "role", LocalKey: "roleId", ForeignKey: "_id", Model: "Role", JustOne: true,
		}))

	reg := docstore.NewRegistry()
	docstore.RegisterRepository[User, UserView](reg, "users", users)

	created, _ := users.Create(ctx, User{Name: "Ana"}, nil)
	view, _ := users.FindOneById(ctx, created.ID, &storagemodels.FindOneOptions{
		Join: storagemodels.JoinDefault(),
	})
*/
package docstore
