package leaf

import "context"

// Store is the capability the profile layer consumes from the component
// database.
type Store interface {
	// GetComponents reads the requested component types of link in one
	// batch. It returns a nil entity and no error when the entity does not
	// exist. Component types that are not present are omitted.
	GetComponents(ctx context.Context, link Link, types []ComponentType) (*Entity, error)

	// AddComponents upserts components on link, creating the entity if
	// needed. A single call is applied atomically.
	AddComponents(ctx context.Context, link Link, components []Component) error

	// DelComponents removes the given component types from link. Absent
	// types are ignored.
	DelComponents(ctx context.Context, link Link, types []ComponentType) error

	// ListEntities enumerates the links below collection. Order is
	// unspecified.
	ListEntities(ctx context.Context, collection Link) ([]Link, error)
}
