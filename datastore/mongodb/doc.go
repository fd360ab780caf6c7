/*
Package mongodb implements datastore.Repository on a MongoDB collection.

Per collection repositories supply only the collection handle and their
default joins:

	roles, err := mongodb.New[Role, Role](db.Collection("roles"))

	users, err := mongodb.New[User, User](db.Collection("users"),
	    mongodb.WithDefaultJoin(storagemodels.JoinDescriptor{
	        Field: "role", LocalKey: "role", ForeignKey: "_id", Model: "Role", JustOne: true,
	    }),
	)

Every read, count, existence check and bulk mutation adds
{deletedAt: {$exists: false}} to the caller filter unless WithDeleted is set.
The predicate is merged into the filter when no key collides and combined
with $and otherwise.

Reads without joins use find. Reads with joins switch to an aggregation:

	$match -> $sort -> $skip -> $limit -> $project -> $lookup...

Raw pipelines get the soft-delete $match as their first stage, or second
when the first stage is one that must lead, such as $geoNear.

Nothing is logged or retried here. Driver errors are returned unchanged
apart from duplicate keys on single writes, which are wrapped in a
DuplicateKeyError that still unwraps to the driver error.
*/
package mongodb
