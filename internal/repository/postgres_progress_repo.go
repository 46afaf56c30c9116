package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/earshelf/internal/model"
)

// PostgresProgressRepo はPostgreSQLを使用した再生位置リポジトリ。
type PostgresProgressRepo struct {
	db *sql.DB
}

// NewPostgresProgressRepo はPostgresProgressRepoを生成する。
func NewPostgresProgressRepo(db *sql.DB) *PostgresProgressRepo {
	return &PostgresProgressRepo{db: db}
}

// Find はユーザーIDとオーディオブックIDで再生位置を取得する。見つからない場合はnilを返す。
func (r *PostgresProgressRepo) Find(ctx context.Context, userID string, audiobookID int64) (*model.ProgressRecord, error) {
	rec := &model.ProgressRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, audiobook_id, current_position, created_at, updated_at
		 FROM listening_progress WHERE user_id = $1 AND audiobook_id = $2`,
		userID, audiobookID,
	).Scan(&rec.UserID, &rec.AudiobookID, &rec.CurrentPosition, &rec.CreatedAt, &rec.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("再生位置の取得に失敗しました: %w", err)
	}

	return rec, nil
}

// Upsert は再生位置を冪等にUPSERTする。
// PRIMARY KEY(user_id, audiobook_id)を利用した単一のINSERT ON CONFLICT文で実装し、
// 事前のSELECTは行わない。同時書き込みでは最後にコミットされた値が残る。
func (r *PostgresProgressRepo) Upsert(ctx context.Context, userID string, audiobookID int64, position int, updatedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO listening_progress (user_id, audiobook_id, current_position, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (user_id, audiobook_id) DO UPDATE SET
		     current_position = EXCLUDED.current_position,
		     updated_at = EXCLUDED.updated_at`,
		userID, audiobookID, position, updatedAt,
	)
	if isForeignKeyViolation(err) {
		return ErrAudiobookNotFound
	}
	if err != nil {
		return fmt.Errorf("再生位置の保存に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ProgressRepository = (*PostgresProgressRepo)(nil)
