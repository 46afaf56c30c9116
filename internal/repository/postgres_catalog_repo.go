package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/earshelf/internal/model"
)

// PostgresCatalogRepo はPostgreSQLを使用したカタログリポジトリ。
type PostgresCatalogRepo struct {
	db *sql.DB
}

// NewPostgresCatalogRepo はPostgresCatalogRepoを生成する。
func NewPostgresCatalogRepo(db *sql.DB) *PostgresCatalogRepo {
	return &PostgresCatalogRepo{db: db}
}

const audiobookSelect = `SELECT a.id, a.title, a.author, a.description, a.cover_path, a.audio_path,
		        a.duration_seconds, a.category_id, c.name, a.created_at
		 FROM audiobooks a
		 JOIN categories c ON a.category_id = c.id`

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAudiobook(s rowScanner, book *model.Audiobook) error {
	var description, coverPath sql.NullString
	if err := s.Scan(
		&book.ID, &book.Title, &book.Author, &description, &coverPath, &book.AudioPath,
		&book.DurationSeconds, &book.CategoryID, &book.CategoryName, &book.CreatedAt,
	); err != nil {
		return err
	}
	book.Description = nullStringValue(description)
	book.CoverPath = nullStringValue(coverPath)
	return nil
}

// FindAudiobookByID は指定IDのオーディオブックをカテゴリ名付きで取得する。
// 見つからない場合はnilを返す。
func (r *PostgresCatalogRepo) FindAudiobookByID(ctx context.Context, id int64) (*model.Audiobook, error) {
	book := &model.Audiobook{}
	err := scanAudiobook(r.db.QueryRowContext(ctx, audiobookSelect+` WHERE a.id = $1`, id), book)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("オーディオブックの取得に失敗しました: %w", err)
	}

	return book, nil
}

// ListAudiobooks はオーディオブックをID昇順で取得する。
// limitが0以下の場合は全件を返す。
func (r *PostgresCatalogRepo) ListAudiobooks(ctx context.Context, limit int) ([]model.Audiobook, error) {
	query := audiobookSelect + ` ORDER BY a.id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("オーディオブック一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	books := []model.Audiobook{}
	for rows.Next() {
		var book model.Audiobook
		if err := scanAudiobook(rows, &book); err != nil {
			return nil, fmt.Errorf("オーディオブックのスキャンに失敗しました: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("オーディオブック一覧の走査に失敗しました: %w", err)
	}

	return books, nil
}

// ListCategories はカテゴリ一覧を名前順で取得する。
func (r *PostgresCatalogRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("カテゴリのスキャンに失敗しました: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の走査に失敗しました: %w", err)
	}

	return categories, nil
}

// compile-time interface check
var _ CatalogRepository = (*PostgresCatalogRepo)(nil)
