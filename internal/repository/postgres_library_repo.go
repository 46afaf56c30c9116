package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/earshelf/internal/model"
)

// PostgresLibraryRepo はPostgreSQLを使用したライブラリリポジトリ。
type PostgresLibraryRepo struct {
	db *sql.DB
}

// NewPostgresLibraryRepo はPostgresLibraryRepoを生成する。
func NewPostgresLibraryRepo(db *sql.DB) *PostgresLibraryRepo {
	return &PostgresLibraryRepo{db: db}
}

// Upsert はライブラリエントリを冪等にUPSERTする。
// PRIMARY KEY(user_id, audiobook_id)を利用したINSERT ON CONFLICTで実装し、
// 既存の組はadded_atのみ更新する。
func (r *PostgresLibraryRepo) Upsert(ctx context.Context, userID string, audiobookID int64, addedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO library_entries (user_id, audiobook_id, added_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, audiobook_id) DO UPDATE SET
		     added_at = EXCLUDED.added_at`,
		userID, audiobookID, addedAt,
	)
	if isForeignKeyViolation(err) {
		return ErrAudiobookNotFound
	}
	if err != nil {
		return fmt.Errorf("ライブラリへの追加に失敗しました: %w", err)
	}
	return nil
}

// Exists はユーザーのライブラリに指定オーディオブックが含まれるかを返す。
func (r *PostgresLibraryRepo) Exists(ctx context.Context, userID string, audiobookID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM library_entries WHERE user_id = $1 AND audiobook_id = $2)`,
		userID, audiobookID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ライブラリの確認に失敗しました: %w", err)
	}
	return exists, nil
}

// ListWithProgress はユーザーのライブラリを再生位置とLEFT JOINして取得する。
// added_at降順。再生位置が存在しない項目のProgressはnil。
func (r *PostgresLibraryRepo) ListWithProgress(ctx context.Context, userID string) ([]model.LibraryItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.title, a.author, a.description, a.cover_path, a.audio_path,
		        a.duration_seconds, a.category_id, c.name, a.created_at,
		        le.added_at,
		        lp.current_position, lp.created_at, lp.updated_at
		 FROM library_entries le
		 JOIN audiobooks a ON le.audiobook_id = a.id
		 JOIN categories c ON a.category_id = c.id
		 LEFT JOIN listening_progress lp
		     ON lp.user_id = le.user_id AND lp.audiobook_id = le.audiobook_id
		 WHERE le.user_id = $1
		 ORDER BY le.added_at DESC, a.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ライブラリ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	items := []model.LibraryItem{}
	for rows.Next() {
		var (
			item               model.LibraryItem
			description, cover sql.NullString
			position           sql.NullInt64
			progressCreatedAt  sql.NullTime
			progressUpdatedAt  sql.NullTime
		)
		err := rows.Scan(
			&item.ID, &item.Title, &item.Author, &description, &cover, &item.AudioPath,
			&item.DurationSeconds, &item.CategoryID, &item.CategoryName, &item.CreatedAt,
			&item.AddedAt,
			&position, &progressCreatedAt, &progressUpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ライブラリ項目のスキャンに失敗しました: %w", err)
		}
		item.Description = nullStringValue(description)
		item.CoverPath = nullStringValue(cover)

		if position.Valid {
			item.Progress = &model.ProgressRecord{
				UserID:          userID,
				AudiobookID:     item.ID,
				CurrentPosition: int(position.Int64),
				CreatedAt:       progressCreatedAt.Time,
				UpdatedAt:       progressUpdatedAt.Time,
			}
		}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ライブラリ一覧の走査に失敗しました: %w", err)
	}

	return items, nil
}

// compile-time interface check
var _ LibraryRepository = (*PostgresLibraryRepo)(nil)
