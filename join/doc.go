/*
Package join emulates relational joins on top of the aggregation framework.

A JoinDescriptor becomes a $lookup stage using the concise
localField/foreignField form together with a sub-pipeline (MongoDB 5.0 or
later):

	{$lookup: {
	    from:         "roles",
	    localField:   "roleId",
	    foreignField: "_id",
	    pipeline:     [{$match: {deletedAt: {$exists: false}}}, {$limit: 1}],
	    as:           "role",
	}}
	{$unwind: {path: "$role", preserveNullAndEmptyArrays: true}}

JustOne keeps the first related document and unwinds it into a single value.
When nothing matches, the destination field is left unset. Nested descriptors
are resolved inside the parent sub-pipeline, so a whole join tree costs a
single round trip.

Target models are resolved to collections when the stages are built. An
unregistered model fails with an UnknownModelError.
*/
package join
