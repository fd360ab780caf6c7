/*
Package registry keeps the process-wide model and index registrations.

Model Registry:
Maps model names to collections so that join descriptors can name their
target by model:

	registry.RegisterModelFor[Role]("Role", "roles")

	coll, err := registry.Resolver{}.ResolveCollection("Role") // "roles"

Index Registry:
Associates collections with the indexes the connection layer creates at
startup:

	registry.RegisterIndexesFor[Country](registry.IndexSpec{
	    Name:   "alpha2Code_unique",
	    Keys:   []registry.IndexKey{{Field: "alpha2Code", Order: 1}},
	    Unique: true,
	})

Index specs can also be loaded from YAML with LoadIndexFile.

The registry is thread-safe and should be populated during initialization,
typically in init() functions.
*/
package registry
