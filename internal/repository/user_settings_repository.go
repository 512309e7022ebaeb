package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smb564/21-points/internal/model"
)

var (
	// ErrNotFound is returned when no row matches the requested id.
	ErrNotFound = errors.New("user settings not found")
	// ErrDuplicateUser is returned when the owning user already has settings.
	ErrDuplicateUser = errors.New("user already has settings")
)

// sortColumns whitelists the properties a listing may be sorted by.
var sortColumns = map[string]string{
	"id":           "id",
	"weeklyGoal":   "weekly_goal",
	"weightUnit":   "weight_unit",
	"reminderTime": "reminder_time",
}

const selectUserSettings = `SELECT id, weekly_goal, weight_unit, reminder_time, user_id FROM user_settings`

type UserSettingsRepository struct {
	pool *pgxpool.Pool
}

func NewUserSettingsRepository(pool *pgxpool.Pool) *UserSettingsRepository {
	return &UserSettingsRepository{pool: pool}
}

func (r *UserSettingsRepository) Create(ctx context.Context, s *model.UserSettings) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO user_settings (weekly_goal, weight_unit, reminder_time, user_id)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		s.WeeklyGoal, weightUnitArg(s.WeightUnit), nullString(s.ReminderTime), userIDArg(s.User),
	).Scan(&s.ID)
	return mapWriteError(err)
}

// Update replaces every column of the row; it returns ErrNotFound when the
// id does not exist.
func (r *UserSettingsRepository) Update(ctx context.Context, s *model.UserSettings) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE user_settings
		 SET weekly_goal = $1, weight_unit = $2, reminder_time = $3, user_id = $4, updated_at = NOW()
		 WHERE id = $5`,
		s.WeeklyGoal, weightUnitArg(s.WeightUnit), nullString(s.ReminderTime), userIDArg(s.User), s.ID)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserSettingsRepository) FindByID(ctx context.Context, id int64) (*model.UserSettings, error) {
	row := r.pool.QueryRow(ctx, selectUserSettings+` WHERE id = $1`, id)
	s, err := scanUserSettings(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *UserSettingsRepository) FindAll(ctx context.Context, p model.Pageable) ([]model.UserSettings, error) {
	query := fmt.Sprintf(`%s ORDER BY %s LIMIT $1 OFFSET $2`, selectUserSettings, orderBy(p.Sort))
	rows, err := r.pool.Query(ctx, query, p.Size, p.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := []model.UserSettings{}
	for rows.Next() {
		s, err := scanUserSettings(rows)
		if err != nil {
			return nil, err
		}
		settings = append(settings, *s)
	}
	return settings, rows.Err()
}

func (r *UserSettingsRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_settings`).Scan(&n)
	return n, err
}

// Delete removes the row. Deleting a missing id is not an error.
func (r *UserSettingsRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_settings WHERE id = $1`, id)
	return err
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateUser
	}
	return err
}

func scanUserSettings(row pgx.Row) (*model.UserSettings, error) {
	var (
		s            model.UserSettings
		weightUnit   *string
		reminderTime *string
		userID       *int64
	)
	if err := row.Scan(&s.ID, &s.WeeklyGoal, &weightUnit, &reminderTime, &userID); err != nil {
		return nil, err
	}
	if weightUnit != nil {
		u := model.WeightUnit(*weightUnit)
		s.WeightUnit = &u
	}
	if reminderTime != nil {
		s.ReminderTime = *reminderTime
	}
	if userID != nil {
		s.User = &model.UserRef{ID: *userID}
	}
	return &s, nil
}

// orderBy renders a whitelisted ORDER BY clause, always ending with id for a
// stable page order.
func orderBy(orders []model.Order) string {
	parts := make([]string, 0, len(orders)+1)
	hasID := false
	for _, o := range orders {
		col, ok := sortColumns[o.Property]
		if !ok {
			continue
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
		hasID = hasID || col == "id"
	}
	if !hasID {
		parts = append(parts, "id ASC")
	}
	return strings.Join(parts, ", ")
}

func weightUnitArg(u *model.WeightUnit) *string {
	if u == nil {
		return nil
	}
	s := string(*u)
	return &s
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func userIDArg(u *model.UserRef) *int64 {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &u.ID
}
