package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/smb564/21-points/internal/eventbus"
	"github.com/smb564/21-points/internal/model"
	"github.com/smb564/21-points/internal/repository"
)

var (
	// ErrIDExists is returned when a create request already carries an id.
	ErrIDExists = errors.New("a new userSettings cannot already have an ID")
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = repository.ErrNotFound
	// ErrDuplicateUser is returned when the owning user already has settings.
	ErrDuplicateUser = repository.ErrDuplicateUser
)

// UserSettingsStore is the system of record.
type UserSettingsStore interface {
	Create(ctx context.Context, s *model.UserSettings) error
	Update(ctx context.Context, s *model.UserSettings) error
	FindByID(ctx context.Context, id int64) (*model.UserSettings, error)
	FindAll(ctx context.Context, p model.Pageable) ([]model.UserSettings, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error
}

// UserSettingsIndex is the search copy of the store.
type UserSettingsIndex interface {
	Save(ctx context.Context, s *model.UserSettings) error
	DeleteAll(ctx context.Context) error
	Search(ctx context.Context, q repository.SearchQuery, p model.Pageable) ([]model.UserSettings, int, error)
}

// IndexEnqueuer schedules asynchronous index updates.
type IndexEnqueuer interface {
	Enqueue(ctx context.Context, job repository.IndexJob) error
}

type UserSettingsService struct {
	store UserSettingsStore
	index UserSettingsIndex
	queue IndexEnqueuer
	bus   *eventbus.Bus
	topic string
	log   zerolog.Logger
}

func NewUserSettingsService(
	store UserSettingsStore,
	index UserSettingsIndex,
	queue IndexEnqueuer,
	bus *eventbus.Bus,
	topic string,
	log zerolog.Logger,
) *UserSettingsService {
	return &UserSettingsService{
		store: store,
		index: index,
		queue: queue,
		bus:   bus,
		topic: topic,
		log:   log.With().Str("component", "user_settings_service").Logger(),
	}
}

// Create persists a new record. The input must not carry an id.
func (s *UserSettingsService) Create(ctx context.Context, in *model.UserSettings) (*model.UserSettings, error) {
	if !in.IsNew() {
		return nil, ErrIDExists
	}

	saved := in.Clone()
	if err := s.store.Create(ctx, saved); err != nil {
		if !errors.Is(err, ErrDuplicateUser) {
			s.log.Error().Err(err).Msg("failed to create user settings")
		}
		return nil, err
	}

	s.changed(ctx, repository.IndexOpSave, saved)
	return saved, nil
}

// Update replaces an existing record. A record without an id is created
// instead, and created reports which path was taken.
func (s *UserSettingsService) Update(ctx context.Context, in *model.UserSettings) (out *model.UserSettings, created bool, err error) {
	if in.IsNew() {
		out, err = s.Create(ctx, in)
		return out, err == nil, err
	}

	saved := in.Clone()
	if err := s.store.Update(ctx, saved); err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrDuplicateUser) {
			s.log.Error().Err(err).Int64("id", in.ID).Msg("failed to update user settings")
		}
		return nil, false, err
	}

	s.changed(ctx, repository.IndexOpSave, saved)
	return saved, false, nil
}

// List returns one page of records and the total row count.
func (s *UserSettingsService) List(ctx context.Context, p model.Pageable) ([]model.UserSettings, int, error) {
	items, err := s.store.FindAll(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list user settings")
		return nil, 0, err
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to count user settings")
		return nil, 0, err
	}
	return items, total, nil
}

func (s *UserSettingsService) Get(ctx context.Context, id int64) (*model.UserSettings, error) {
	return s.store.FindByID(ctx, id)
}

// Delete removes a record. Deleting an unknown id is not an error.
func (s *UserSettingsService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		s.log.Error().Err(err).Int64("id", id).Msg("failed to delete user settings")
		return err
	}
	s.enqueue(ctx, repository.IndexJob{Op: repository.IndexOpDelete, ID: id})
	return nil
}

// Search runs query against the search index.
func (s *UserSettingsService) Search(ctx context.Context, query string, p model.Pageable) ([]model.UserSettings, int, error) {
	items, total, err := s.index.Search(ctx, repository.ParseSearchQuery(query), p)
	if err != nil {
		s.log.Error().Err(err).Str("query", query).Msg("failed to search user settings")
		return nil, 0, err
	}
	return items, total, nil
}

// SearchByID runs query restricted to one record. The result holds at most
// one element.
func (s *UserSettingsService) SearchByID(ctx context.Context, id int64, query string) ([]model.UserSettings, error) {
	matches, _, err := s.index.Search(ctx, repository.ParseSearchQuery(query), model.Pageable{})
	if err != nil {
		s.log.Error().Err(err).Int64("id", id).Str("query", query).Msg("failed to search user settings")
		return nil, err
	}
	for _, m := range matches {
		if m.ID == id {
			return []model.UserSettings{m}, nil
		}
	}
	return []model.UserSettings{}, nil
}

// Reindex rebuilds the search index from the store and returns the number
// of documents written.
func (s *UserSettingsService) Reindex(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	if err := s.index.DeleteAll(ctx); err != nil {
		return 0, err
	}

	indexed := 0
	for page := 0; ; page++ {
		items, err := s.store.FindAll(ctx, model.Pageable{Page: page, Size: batchSize})
		if err != nil {
			return indexed, err
		}
		for i := range items {
			if err := s.index.Save(ctx, &items[i]); err != nil {
				return indexed, err
			}
			indexed++
		}
		if len(items) < batchSize {
			break
		}
	}

	s.log.Info().Int("count", indexed).Msg("search index rebuilt")
	return indexed, nil
}

// changed schedules reindexing and notifies live views.
func (s *UserSettingsService) changed(ctx context.Context, op repository.IndexOp, saved *model.UserSettings) {
	s.enqueue(ctx, repository.IndexJob{Op: op, ID: saved.ID})
	if s.bus != nil {
		eventbus.Publish(s.bus, s.topic, saved.Clone())
	}
}

// enqueue failures leave the index stale until the next reindex; the write
// itself already succeeded.
func (s *UserSettingsService) enqueue(ctx context.Context, job repository.IndexJob) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.log.Warn().Err(err).Str("op", string(job.Op)).Int64("id", job.ID).Msg("failed to enqueue index job")
	}
}
