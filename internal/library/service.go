// Package library はユーザーのオーディオブックライブラリを管理する。
package library

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hitoshi/earshelf/internal/model"
	"github.com/hitoshi/earshelf/internal/progress"
	"github.com/hitoshi/earshelf/internal/repository"
)

// Service はライブラリへの追加と一覧取得を提供する。
// 削除操作は持たない。
type Service struct {
	libraryRepo repository.LibraryRepository
	catalogRepo repository.CatalogRepository
	now         func() time.Time
}

// NewService はServiceを生成する。
func NewService(libraryRepo repository.LibraryRepository, catalogRepo repository.CatalogRepository) *Service {
	return &Service{
		libraryRepo: libraryRepo,
		catalogRepo: catalogRepo,
		now:         time.Now,
	}
}

// AddToLibrary はオーディオブックをユーザーのライブラリに追加する。
// 既に追加済みの場合はadded_atのみ更新する（冪等）。
func (s *Service) AddToLibrary(ctx context.Context, userID string, audiobookID int64) error {
	if userID == "" {
		return model.NewUnauthorizedError()
	}
	if audiobookID <= 0 {
		return model.NewInvalidInputError("audiobook_id must be a positive integer")
	}

	book, err := s.catalogRepo.FindAudiobookByID(ctx, audiobookID)
	if err != nil {
		return storageError("failed to find audiobook", userID, audiobookID, err)
	}
	if book == nil {
		return model.NewAudiobookNotFoundError(audiobookID)
	}

	err = s.libraryRepo.Upsert(ctx, userID, audiobookID, s.now())
	if errors.Is(err, repository.ErrAudiobookNotFound) {
		// 存在確認後に削除された場合
		return model.NewAudiobookNotFoundError(audiobookID)
	}
	if err != nil {
		return storageError("failed to add audiobook to library", userID, audiobookID, err)
	}

	slog.Info("audiobook added to library",
		slog.String("user_id", userID),
		slog.Int64("audiobook_id", audiobookID),
	)
	return nil
}

// ListLibrary はユーザーのライブラリを追加日時の新しい順に返す。
// 各項目には再生位置と進捗率が付与される。
func (s *Service) ListLibrary(ctx context.Context, userID string) ([]model.LibraryItem, error) {
	if userID == "" {
		return nil, model.NewUnauthorizedError()
	}

	items, err := s.libraryRepo.ListWithProgress(ctx, userID)
	if err != nil {
		return nil, storageError("failed to list library", userID, 0, err)
	}

	for i := range items {
		if items[i].Progress != nil {
			items[i].PercentComplete = progress.PercentComplete(
				items[i].Progress.CurrentPosition, items[i].DurationSeconds)
		}
	}

	return items, nil
}

// Contains はオーディオブックがユーザーのライブラリに含まれるかを返す。
func (s *Service) Contains(ctx context.Context, userID string, audiobookID int64) (bool, error) {
	if userID == "" {
		return false, model.NewUnauthorizedError()
	}

	ok, err := s.libraryRepo.Exists(ctx, userID, audiobookID)
	if err != nil {
		return false, storageError("failed to check library", userID, audiobookID, err)
	}
	return ok, nil
}

func storageError(msg, userID string, audiobookID int64, err error) error {
	slog.Error(msg,
		slog.String("user_id", userID),
		slog.Int64("audiobook_id", audiobookID),
		slog.String("error", err.Error()),
	)
	return model.NewStorageUnavailableError(err)
}
