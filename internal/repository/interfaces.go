// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/earshelf/internal/model"
)

// ErrDuplicateUser はユーザー名またはメールアドレスのUNIQUE制約違反を表す。
var ErrDuplicateUser = errors.New("duplicate username or email")

// ErrAudiobookNotFound は参照先のオーディオブックが存在しないことを表す（外部キー制約違反）。
var ErrAudiobookNotFound = errors.New("audiobook not found")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// ExistsByUsernameOrEmail はユーザー名またはメールアドレスが既に使われているかを返す。
	// 比較は保存値との完全一致（大文字小文字を区別する）。
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// Create はユーザーを作成する。
	// UNIQUE制約に違反した場合はErrDuplicateUserを返す。
	Create(ctx context.Context, user *model.User) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// CatalogRepository はオーディオブックカタログの読み取りインターフェース。
type CatalogRepository interface {
	// FindAudiobookByID は指定IDのオーディオブックをカテゴリ名付きで取得する。
	// 見つからない場合はnilを返す。
	FindAudiobookByID(ctx context.Context, id int64) (*model.Audiobook, error)

	// ListAudiobooks はオーディオブックをID昇順で取得する。
	// limitが0以下の場合は全件を返す。
	ListAudiobooks(ctx context.Context, limit int) ([]model.Audiobook, error)

	// ListCategories はカテゴリ一覧を名前順で取得する。
	ListCategories(ctx context.Context) ([]model.Category, error)
}

// LibraryRepository はユーザーライブラリ（user × audiobook）の永続化インターフェース。
type LibraryRepository interface {
	// Upsert はライブラリエントリを冪等にUPSERTする。
	// 既存の組の場合はadded_atのみ更新する。
	// オーディオブックが存在しない場合はErrAudiobookNotFoundを返す。
	Upsert(ctx context.Context, userID string, audiobookID int64, addedAt time.Time) error

	// Exists はユーザーのライブラリに指定オーディオブックが含まれるかを返す。
	Exists(ctx context.Context, userID string, audiobookID int64) (bool, error)

	// ListWithProgress はユーザーのライブラリを再生位置とLEFT JOINして取得する。
	// added_at降順。再生位置が存在しない項目のProgressはnil。
	ListWithProgress(ctx context.Context, userID string) ([]model.LibraryItem, error)
}

// ProgressRepository は再生位置の永続化インターフェース。
type ProgressRepository interface {
	// Find はユーザーIDとオーディオブックIDで再生位置を取得する。見つからない場合はnilを返す。
	Find(ctx context.Context, userID string, audiobookID int64) (*model.ProgressRecord, error)

	// Upsert は再生位置を単一のINSERT ... ON CONFLICT文で書き込む。
	// 同じ組への同時書き込みでも行は1件のみで、最後にコミットされた値が残る。
	// オーディオブックが存在しない場合はErrAudiobookNotFoundを返す。
	Upsert(ctx context.Context, userID string, audiobookID int64, position int, updatedAt time.Time) error
}

// HealthChecker はデータベースの疎通確認インターフェース。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}
