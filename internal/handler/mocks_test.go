package handler

import (
	"context"

	"github.com/hitoshi/earshelf/internal/auth"
	"github.com/hitoshi/earshelf/internal/catalog"
	"github.com/hitoshi/earshelf/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	registerFn       func(ctx context.Context, in auth.RegisterInput) (string, error)
	authenticateFn   func(ctx context.Context, email, password string) (*model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getCurrentUserFn func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, in auth.RegisterInput) (string, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return "", nil
}

func (m *mockAuthService) Authenticate(ctx context.Context, email, password string) (*model.Session, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, email, password)
	}
	return nil, model.NewAuthFailedError()
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, model.NewUnauthorizedError()
}

type mockCatalogService struct {
	listFeaturedFn func(ctx context.Context) ([]model.Audiobook, error)
	listAllFn      func(ctx context.Context) (*catalog.Listing, error)
	getAudiobookFn func(ctx context.Context, id int64) (*model.Audiobook, error)
}

func (m *mockCatalogService) ListFeatured(ctx context.Context) ([]model.Audiobook, error) {
	if m.listFeaturedFn != nil {
		return m.listFeaturedFn(ctx)
	}
	return nil, nil
}

func (m *mockCatalogService) ListAll(ctx context.Context) (*catalog.Listing, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return &catalog.Listing{}, nil
}

func (m *mockCatalogService) GetAudiobook(ctx context.Context, id int64) (*model.Audiobook, error) {
	if m.getAudiobookFn != nil {
		return m.getAudiobookFn(ctx, id)
	}
	return nil, model.NewAudiobookNotFoundError(id)
}

type mockLibraryService struct {
	addToLibraryFn func(ctx context.Context, userID string, audiobookID int64) error
	listLibraryFn  func(ctx context.Context, userID string) ([]model.LibraryItem, error)
	containsFn     func(ctx context.Context, userID string, audiobookID int64) (bool, error)
}

func (m *mockLibraryService) AddToLibrary(ctx context.Context, userID string, audiobookID int64) error {
	if m.addToLibraryFn != nil {
		return m.addToLibraryFn(ctx, userID, audiobookID)
	}
	return nil
}

func (m *mockLibraryService) ListLibrary(ctx context.Context, userID string) ([]model.LibraryItem, error) {
	if m.listLibraryFn != nil {
		return m.listLibraryFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockLibraryService) Contains(ctx context.Context, userID string, audiobookID int64) (bool, error) {
	if m.containsFn != nil {
		return m.containsFn(ctx, userID, audiobookID)
	}
	return false, nil
}

type mockProgressService struct {
	saveProgressFn func(ctx context.Context, userID string, audiobookID int64, seconds int) error
	resumeOffsetFn func(ctx context.Context, userID string, audiobookID int64) (int, error)
}

func (m *mockProgressService) SaveProgress(ctx context.Context, userID string, audiobookID int64, seconds int) error {
	if m.saveProgressFn != nil {
		return m.saveProgressFn(ctx, userID, audiobookID, seconds)
	}
	return nil
}

func (m *mockProgressService) ResumeOffset(ctx context.Context, userID string, audiobookID int64) (int, error) {
	if m.resumeOffsetFn != nil {
		return m.resumeOffsetFn(ctx, userID, audiobookID)
	}
	return 0, nil
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

// --- テストヘルパー ---

func sampleAudiobook(id int64) *model.Audiobook {
	return &model.Audiobook{
		ID:              id,
		Title:           "Pride and Prejudice",
		Author:          "Jane Austen",
		Description:     "<p>A classic.</p>",
		CoverPath:       "covers/pride.jpg",
		AudioPath:       "audio/pride.mp3",
		DurationSeconds: 120,
		CategoryID:      1,
		CategoryName:    "Fiction",
	}
}
