/*
Package storagemodels defines the option bundles and descriptors shared by
every repository.

Option bundles are composed by embedding rather than duplicated:

	FindAllOptions
	    FindOneOptions        WithDeleted, Select, Join
	        SessionOptions    Session
	    PaginationOptions     Paging, Order

A nil bundle always means defaults: soft-deleted documents hidden, no
projection, no joins, no paging.

	repo.FindAll(ctx, bson.M{"name": "Chile"}, &storagemodels.FindAllOptions{
	    FindOneOptions: storagemodels.FindOneOptions{
	        Select: storagemodels.ParseSelect("name alpha2Code"),
	        Join:   storagemodels.JoinDefault(),
	    },
	    PaginationOptions: storagemodels.PaginationOptions{
	        Paging: &storagemodels.Paging{Limit: 20, Offset: 40},
	        Order:  storagemodels.Order{{Field: "name", Direction: storagemodels.Asc}},
	    },
	})

JoinDescriptor:

	storagemodels.JoinDescriptor{
	    Field:      "role",
	    LocalKey:   "roleId",
	    ForeignKey: "_id",
	    Model:      "Role",
	    JustOne:    true,
	}

StreamOptions configure cursor streaming with functional options:

	repo.Stream(ctx, filter, nil,
	    storagemodels.WithBufferSize(50),
	    storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {}),
	)
*/
package storagemodels
