package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/repository"
	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
	"github.com/ignatzorin/appeals-backend/internal/pkg/apperror"
)

// Коды исключений из триггера appeals_guard_decision.
const (
	pqCodeAlreadyDecided = "P0409"
	pqCodeNotAdmin       = "P0403"
)

const appealColumns = `id, username, reason, explanation, discord_tag, user_email, uid, auth_type,
	timestamp_ms, status, admin_note, decided_by, decided_at, ai_flag, ai_verified`

type appealRow struct {
	ID          uuid.UUID      `db:"id"`
	Username    string         `db:"username"`
	Reason      string         `db:"reason"`
	Explanation string         `db:"explanation"`
	DiscordTag  sql.NullString `db:"discord_tag"`
	UserEmail   string         `db:"user_email"`
	UID         string         `db:"uid"`
	AuthType    string         `db:"auth_type"`
	TimestampMS int64          `db:"timestamp_ms"`
	Status      string         `db:"status"`
	AdminNote   sql.NullString `db:"admin_note"`
	DecidedBy   sql.NullString `db:"decided_by"`
	DecidedAt   sql.NullTime   `db:"decided_at"`
	AIFlag      sql.NullString `db:"ai_flag"`
	AIVerified  bool           `db:"ai_verified"`
}

func (r appealRow) toEntity() *entity.Appeal {
	a := &entity.Appeal{
		ID:          r.ID,
		Username:    r.Username,
		Reason:      r.Reason,
		Explanation: r.Explanation,
		UserEmail:   r.UserEmail,
		UID:         r.UID,
		AuthType:    valueobject.AuthType(r.AuthType),
		Timestamp:   r.TimestampMS,
		Status:      valueobject.AppealStatus(r.Status),
		AIVerified:  r.AIVerified,
	}
	if r.DiscordTag.Valid {
		a.DiscordTag = &r.DiscordTag.String
	}
	if r.AdminNote.Valid {
		a.AdminNote = &r.AdminNote.String
	}
	if r.DecidedBy.Valid {
		a.DecidedBy = &r.DecidedBy.String
	}
	if r.DecidedAt.Valid {
		t := r.DecidedAt.Time
		a.DecidedAt = &t
	}
	if flag, ok := valueobject.NewAIFlag(r.AIFlag.String); r.AIFlag.Valid && ok {
		a.AIFlag = &flag
	}
	return a
}

type AppealRepositoryAdapter struct {
	db *sqlx.DB
}

func NewAppealRepositoryAdapter(db *sqlx.DB) *AppealRepositoryAdapter {
	return &AppealRepositoryAdapter{db: db}
}

var _ repository.AppealRepository = (*AppealRepositoryAdapter)(nil)

func (r *AppealRepositoryAdapter) Create(ctx context.Context, appeal *entity.Appeal) error {
	query := `
		INSERT INTO appeals (id, username, reason, explanation, discord_tag, user_email, uid, auth_type, timestamp_ms, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		appeal.ID,
		appeal.Username,
		appeal.Reason,
		appeal.Explanation,
		appeal.DiscordTag,
		appeal.UserEmail,
		appeal.UID,
		string(appeal.AuthType),
		appeal.Timestamp,
		string(appeal.Status),
	)
	if err != nil {
		return mapError(err, "не удалось сохранить апелляцию")
	}
	return nil
}

func (r *AppealRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appeal, error) {
	var row appealRow
	query := `SELECT ` + appealColumns + ` FROM appeals WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrAppealNotFound
		}
		return nil, mapError(err, "не удалось получить апелляцию")
	}
	return row.toEntity(), nil
}

// Decide выполняет переход одним условным UPDATE: из двух конкурирующих решений
// строку обновит только первое.
func (r *AppealRepositoryAdapter) Decide(ctx context.Context, id uuid.UUID, decision repository.Decision) (*entity.Appeal, error) {
	var row appealRow
	query := `
		UPDATE appeals
		SET status = $2, admin_note = $3, decided_by = $4, decided_at = $5
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + appealColumns
	err := r.db.GetContext(ctx, &row, query,
		id,
		string(decision.Verdict),
		decision.Note,
		decision.DecidedBy,
		decision.DecidedAt.UTC(),
	)
	if err == nil {
		return row.toEntity(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, mapError(err, "не удалось сохранить решение")
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM appeals WHERE id = $1)`, id); err != nil {
		return nil, mapError(err, "не удалось проверить апелляцию")
	}
	if !exists {
		return nil, apperror.ErrAppealNotFound
	}
	return nil, apperror.ErrAppealAlreadyClosed
}

func (r *AppealRepositoryAdapter) ListByUID(ctx context.Context, uid string) ([]*entity.Appeal, error) {
	query := `SELECT ` + appealColumns + ` FROM appeals WHERE uid = $1 ORDER BY timestamp_ms DESC`
	return r.list(ctx, query, uid)
}

func (r *AppealRepositoryAdapter) ListAll(ctx context.Context) ([]*entity.Appeal, error) {
	query := `SELECT ` + appealColumns + ` FROM appeals ORDER BY timestamp_ms DESC`
	return r.list(ctx, query)
}

func (r *AppealRepositoryAdapter) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Appeal, error) {
	var rows []appealRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, mapError(err, "не удалось получить список апелляций")
	}
	appeals := make([]*entity.Appeal, 0, len(rows))
	for _, row := range rows {
		appeals = append(appeals, row.toEntity())
	}
	return appeals, nil
}

func (r *AppealRepositoryAdapter) SetAIFlag(ctx context.Context, id uuid.UUID, flag valueobject.AIFlag) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE appeals SET ai_flag = $2, ai_verified = TRUE WHERE id = $1`, id, string(flag))
	if err != nil {
		return mapError(err, "не удалось сохранить AI отметку")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return mapError(err, "не удалось проверить результат обновления")
	}
	if rows == 0 {
		return apperror.ErrAppealNotFound
	}
	return nil
}

// mapError переводит ошибки драйвера в apperror. Отказ триггера означает,
// что решение пытался записать не администратор или апелляция уже закрыта.
func mapError(err error, message string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.ErrStoreTimeout
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqCodeNotAdmin:
			return apperror.Wrap(err, apperror.ErrCodeForbidden, "решение может принять только администратор")
		case pqCodeAlreadyDecided:
			return apperror.ErrAppealAlreadyClosed
		}
	}
	return apperror.Persistence(err, message)
}
