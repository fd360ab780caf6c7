/*
Package datastore defines the repository contract of docstore.

The main interface is Repository[E, D], generic over the create payload E and
the document type D read back:

	type Repository[E any, D entity.Document] interface {
	    FindAll(ctx, filter, *FindAllOptions) ([]D, error)
	    FindOne(ctx, filter, *FindOneOptions) (*D, error)
	    FindOneAndLock(ctx, filter, *FindOneLockOptions) (*D, error)
	    GetTotal(ctx, filter, *GetTotalOptions) (int64, error)
	    Exists(ctx, filter, *ExistsOptions) (bool, error)
	    Create(ctx, payload E, *CreateOptions) (*D, error)
	    Save(ctx, doc D, *SaveOptions) (*D, error)
	    SoftDelete(ctx, doc D, *SaveOptions) (*D, error)
	    Restore(ctx, doc D, *SaveOptions) (*D, error)
	    RawGetTotal(ctx, pipeline, *RawGetTotalOptions) (int64, error)
	    ...
	}

Instance mutations never modify the value passed in; they return the new
state. A typical read-modify-write:

	u, err := users.FindOneById(ctx, id, nil)
	if err != nil || u == nil {
	    return err
	}
	u.Name = "new name"
	u, err = users.Save(ctx, *u, nil) // fails with a ConcurrencyError if u changed meanwhile

Implementations:
  - mongodb: MongoDB implementation over a collection handle
  - mock: In-memory implementation for testing
*/
package datastore
