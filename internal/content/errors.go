package content

import "git.home.luguber.info/inful/sociallike/internal/foundation/errors"

var (
	// ErrNotFound indicates no item exists at the requested path.
	ErrNotFound = errors.NotFoundError("content item not found").Build()

	// ErrAlreadyExists indicates the target path is already taken.
	ErrAlreadyExists = errors.AlreadyExistsError("content item already exists").Build()

	// ErrInvalidID indicates an item id that cannot be used as a path segment.
	ErrInvalidID = errors.ValidationError("invalid content id").Build()

	// ErrInvalidTransition indicates a workflow transition not available in the item's state.
	ErrInvalidTransition = errors.WorkflowError("transition not available").Build()

	// ErrParentNotFound indicates the container for a new item does not exist.
	ErrParentNotFound = errors.NotFoundError("parent container not found").Build()
)
