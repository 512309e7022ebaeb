package worker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/smb564/21-points/internal/model"
	"github.com/smb564/21-points/internal/repository"
)

const (
	popTimeout = time.Second
	retryDelay = 5 * time.Second
)

// JobQueue is the queue the worker consumes.
type JobQueue interface {
	Pop(ctx context.Context, timeout time.Duration) (string, error)
	TryPop(ctx context.Context) (string, error)
	Requeue(ctx context.Context, raw string) error
}

// SettingsFinder loads the database copy of a record.
type SettingsFinder interface {
	FindByID(ctx context.Context, id int64) (*model.UserSettings, error)
}

// SearchIndex is the document store the worker writes.
type SearchIndex interface {
	Save(ctx context.Context, s *model.UserSettings) error
	Delete(ctx context.Context, id int64) error
}

// IndexWorker consumes the index queue and syncs the search index with PostgreSQL.
type IndexWorker struct {
	queue      JobQueue
	store      SettingsFinder
	index      SearchIndex
	retryDelay time.Duration
	log        zerolog.Logger
}

// NewIndexWorker creates a new IndexWorker.
func NewIndexWorker(queue JobQueue, store SettingsFinder, index SearchIndex, log zerolog.Logger) *IndexWorker {
	return &IndexWorker{
		queue:      queue,
		store:      store,
		index:      index,
		retryDelay: retryDelay,
		log:        log.With().Str("component", "index_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *IndexWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *IndexWorker) processNext(ctx context.Context) {
	raw, err := w.queue.Pop(ctx, popTimeout)
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	job, err := repository.DecodeIndexJob(raw)
	if err != nil {
		w.log.Error().Err(err).Str("raw", raw).Msg("Unmarshal error, dropping job")
		return
	}

	if err := w.apply(ctx, job); err != nil {
		w.log.Error().Err(err).
			Str("op", string(job.Op)).
			Int64("id", job.ID).
			Dur("retry_in", w.retryDelay).
			Msg("Index error, retrying")
		if err := w.queue.Requeue(ctx, raw); err != nil {
			w.log.Error().Err(err).Msg("Requeue error")
		}
		sleep(ctx, w.retryDelay)
	}
}

func (w *IndexWorker) apply(ctx context.Context, job repository.IndexJob) error {
	switch job.Op {
	case repository.IndexOpDelete:
		return w.index.Delete(ctx, job.ID)
	case repository.IndexOpSave:
		s, err := w.store.FindByID(ctx, job.ID)
		if errors.Is(err, repository.ErrNotFound) {
			// Deleted before we got to it.
			return w.index.Delete(ctx, job.ID)
		}
		if err != nil {
			return err
		}
		return w.index.Save(ctx, s)
	default:
		w.log.Warn().Str("op", string(job.Op)).Msg("Unknown index op, dropping job")
		return nil
	}
}

// drain processes all remaining jobs before shutdown.
func (w *IndexWorker) drain(ctx context.Context) {
	drained := 0
	for {
		raw, err := w.queue.TryPop(ctx)
		if err != nil {
			break
		}

		job, err := repository.DecodeIndexJob(raw)
		if err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.apply(ctx, job); err != nil {
			w.log.Error().Err(err).Msg("Drain index error")
			_ = w.queue.Requeue(ctx, raw)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
