package events

// Streams.
const (
	ListingStream = "listings"
	UserStream    = "users"
)

// Event types.
const (
	ListingCreated  = "listing.created"
	ListingReplaced = "listing.replaced"
	ListingPatched  = "listing.patched"
	ListingDeleted  = "listing.deleted"
	UserRegistered  = "user.registered"
	UserVerified    = "user.verified"
	UserUpdated     = "user.updated"
	UserDeleted     = "user.deleted"
)
