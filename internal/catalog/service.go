// Package catalog はオーディオブックカタログの読み取りを提供する。
package catalog

import (
	"context"
	"log/slog"

	"github.com/hitoshi/earshelf/internal/model"
	"github.com/hitoshi/earshelf/internal/repository"
	"github.com/hitoshi/earshelf/internal/security"
)

// FeaturedLimit はトップページに表示するオーディオブック数。
const FeaturedLimit = 4

// Listing はライブラリページ用の全オーディオブックとカテゴリ一覧。
type Listing struct {
	Audiobooks []model.Audiobook
	Categories []model.Category
}

// Service はカタログの読み取り専用サービス。
type Service struct {
	repo      repository.CatalogRepository
	sanitizer security.DescriptionSanitizer
}

// NewService はServiceを生成する。
func NewService(repo repository.CatalogRepository, sanitizer security.DescriptionSanitizer) *Service {
	return &Service{repo: repo, sanitizer: sanitizer}
}

// ListFeatured はトップページ用にID順で先頭FeaturedLimit件を返す。
func (s *Service) ListFeatured(ctx context.Context) ([]model.Audiobook, error) {
	books, err := s.repo.ListAudiobooks(ctx, FeaturedLimit)
	if err != nil {
		return nil, storageError("failed to list featured audiobooks", err)
	}
	s.sanitizeAll(books)
	return books, nil
}

// ListAll は全オーディオブックとカテゴリ一覧を返す。
// 検索・絞り込みはクライアント側で行う。
func (s *Service) ListAll(ctx context.Context) (*Listing, error) {
	books, err := s.repo.ListAudiobooks(ctx, 0)
	if err != nil {
		return nil, storageError("failed to list audiobooks", err)
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, storageError("failed to list categories", err)
	}

	s.sanitizeAll(books)
	return &Listing{Audiobooks: books, Categories: categories}, nil
}

// GetAudiobook は指定IDのオーディオブックを返す。
func (s *Service) GetAudiobook(ctx context.Context, id int64) (*model.Audiobook, error) {
	if id <= 0 {
		return nil, model.NewInvalidInputError("audiobook_id must be a positive integer")
	}

	book, err := s.repo.FindAudiobookByID(ctx, id)
	if err != nil {
		return nil, storageError("failed to find audiobook", err)
	}
	if book == nil {
		return nil, model.NewAudiobookNotFoundError(id)
	}

	book.Description = s.sanitizer.Sanitize(book.Description)
	return book, nil
}

func (s *Service) sanitizeAll(books []model.Audiobook) {
	for i := range books {
		books[i].Description = s.sanitizer.Sanitize(books[i].Description)
	}
}

func storageError(msg string, err error) error {
	slog.Error(msg, slog.String("error", err.Error()))
	return model.NewStorageUnavailableError(err)
}
