package repository

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/smb564/21-points/internal/config"
	"github.com/smb564/21-points/internal/model"
)

// UserSettingsSearchRepository keeps a search copy of every user settings row
// in a Redis hash keyed by id.
type UserSettingsSearchRepository struct {
	rdb *redis.Client
	key string
}

func NewUserSettingsSearchRepository(rdb *redis.Client) *UserSettingsSearchRepository {
	return &UserSettingsSearchRepository{rdb: rdb, key: config.Key.UserSettingsIndexKey()}
}

func (r *UserSettingsSearchRepository) Save(ctx context.Context, s *model.UserSettings) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.HSet(ctx, r.key, strconv.FormatInt(s.ID, 10), doc).Err()
}

func (r *UserSettingsSearchRepository) Delete(ctx context.Context, id int64) error {
	return r.rdb.HDel(ctx, r.key, strconv.FormatInt(id, 10)).Err()
}

// DeleteAll drops the whole index.
func (r *UserSettingsSearchRepository) DeleteAll(ctx context.Context) error {
	return r.rdb.Del(ctx, r.key).Err()
}

// Search returns one page of matching documents and the total match count.
func (r *UserSettingsSearchRepository) Search(ctx context.Context, q SearchQuery, p model.Pageable) ([]model.UserSettings, int, error) {
	docs, err := r.rdb.HVals(ctx, r.key).Result()
	if err != nil {
		return nil, 0, err
	}
	matches := decodeMatches(docs, q)
	return pageOf(matches, p), len(matches), nil
}

// decodeMatches skips documents that no longer decode; a reindex rewrites them.
func decodeMatches(docs []string, q SearchQuery) []model.UserSettings {
	matches := []model.UserSettings{}
	for _, doc := range docs {
		var s model.UserSettings
		if err := json.Unmarshal([]byte(doc), &s); err != nil {
			continue
		}
		if q.Match(&s) {
			matches = append(matches, s)
		}
	}
	return matches
}

func pageOf(matches []model.UserSettings, p model.Pageable) []model.UserSettings {
	sortUserSettings(matches, p.Sort)

	start := p.Offset()
	if start < 0 || start >= len(matches) {
		return []model.UserSettings{}
	}
	end := start + p.Size
	if p.Size <= 0 || end < start || end > len(matches) {
		end = len(matches)
	}
	return matches[start:end]
}
