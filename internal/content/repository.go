package content

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
	"git.home.luguber.info/inful/sociallike/internal/logfields"
	"git.home.luguber.info/inful/sociallike/internal/vhost"
)

// Repository implements content operations (create, workflow, field updates)
// on top of a Store. All items live below the site root.
type Repository struct {
	store  Store
	root   string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the time source used for created/modified stamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) { r.logger = logger }
}

// NewRepository creates a repository for the site rooted at /siteID.
func NewRepository(store Store, siteID string, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		root:   JoinPath(siteID),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root returns the physical path of the site root.
func (r *Repository) Root() string { return r.root }

// SiteRoot returns the site root as a located object.
func (r *Repository) SiteRoot() vhost.Located { return vhost.PhysicalPath(r.root) }

// Store returns the underlying backend.
func (r *Repository) Store() Store { return r.store }

// Create adds a private item of type typ below parentPath. An empty id is
// derived from title.
func (r *Repository) Create(ctx context.Context, parentPath, typ, id, title string) (*Item, error) {
	parentPath = JoinPath(parentPath)
	if parentPath != r.root {
		if _, err := r.store.Get(ctx, parentPath); err != nil {
			if errors.HasCategory(err, errors.CategoryNotFound) {
				return nil, ErrParentNotFound.WithContext("path", parentPath)
			}
			return nil, err
		}
	}

	if id == "" {
		id = NormalizeID(title)
	}
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if title == "" {
		title = id
	}

	path := JoinPath(parentPath, id)
	switch _, err := r.store.Get(ctx, path); {
	case err == nil:
		return nil, ErrAlreadyExists.WithContext("path", path)
	case !errors.HasCategory(err, errors.CategoryNotFound):
		return nil, err
	}

	now := r.now()
	item := &Item{
		UID:      uuid.NewString(),
		ID:       id,
		Type:     typ,
		Title:    title,
		Path:     path,
		State:    StatePrivate,
		Created:  now,
		Modified: now,
	}
	if err := r.store.Put(ctx, item); err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "create content item").
			WithContext("path", path).
			Build()
	}
	if err := r.Reindex(ctx, item); err != nil {
		return nil, err
	}

	r.logger.Debug("Content item created", logfields.Path(path), logfields.ItemUID(item.UID), slog.String("type", typ))
	return item, nil
}

// Get returns the item at path.
func (r *Repository) Get(ctx context.Context, path string) (*Item, error) {
	return r.store.Get(ctx, path)
}

// Find returns items below the site root matching q.
func (r *Repository) Find(ctx context.Context, q Query) ([]*Item, error) {
	if q.PathPrefix == "" {
		q.PathPrefix = r.root
	}
	items, err := r.store.Find(ctx, q)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "find content items").Build()
	}
	return items, nil
}

// Transition fires a workflow action on item, then saves and reindexes it.
// Publishing does not touch the effective date.
func (r *Repository) Transition(ctx context.Context, item *Item, action string) error {
	next, ok := nextState(item.State, action)
	if !ok {
		return ErrInvalidTransition.WithContextMap(errors.ErrorContext{
			"path":       item.Path,
			"state":      string(item.State),
			"transition": action,
		})
	}
	previous := item.State
	item.State = next
	if err := r.Save(ctx, item); err != nil {
		item.State = previous
		return err
	}
	r.logger.Info("Workflow transition",
		logfields.Path(item.Path),
		logfields.Transition(action),
		logfields.State(string(next)))
	return r.Reindex(ctx, item)
}

// SetEffective sets the effective date of item, then saves and reindexes it.
func (r *Repository) SetEffective(ctx context.Context, item *Item, effective time.Time) error {
	item.EffectiveDate = effective
	if err := r.Save(ctx, item); err != nil {
		return err
	}
	return r.Reindex(ctx, item)
}

// Save persists item and bumps its modification time.
func (r *Repository) Save(ctx context.Context, item *Item) error {
	item.Modified = r.now()
	if err := r.store.Put(ctx, item); err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "save content item").
			WithContext("path", item.Path).
			Build()
	}
	return nil
}

// Reindex refreshes the backend indexes for item.
func (r *Repository) Reindex(ctx context.Context, item *Item) error {
	if err := r.store.Reindex(ctx, item); err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "reindex content item").
			WithContext("path", item.Path).
			Build()
	}
	return nil
}
