package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hitoshi/earshelf/internal/catalog"
	"github.com/hitoshi/earshelf/internal/model"
)

// mediaURLPrefix は静的メディアファイルの配信パス。
const mediaURLPrefix = "/media/"

// CatalogServiceInterface はカタログハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	ListFeatured(ctx context.Context) ([]model.Audiobook, error)
	ListAll(ctx context.Context) (*catalog.Listing, error)
}

// CatalogHandler はオーディオブックカタログのHTTPハンドラー。
type CatalogHandler struct {
	service CatalogServiceInterface
}

// NewCatalogHandler はCatalogHandlerを生成する。
func NewCatalogHandler(service CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// audiobookResponse はオーディオブックのAPIレスポンス。
type audiobookResponse struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Description     string `json:"description"`
	CoverURL        string `json:"cover_url"`
	AudioURL        string `json:"audio_url"`
	DurationSeconds int    `json:"duration_seconds"`
	CategoryID      int64  `json:"category_id"`
	CategoryName    string `json:"category_name"`
}

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// catalogResponse は全件一覧のレスポンス。
type catalogResponse struct {
	Audiobooks []audiobookResponse `json:"audiobooks"`
	Categories []categoryResponse  `json:"categories"`
}

// ListFeatured はホーム画面のおすすめオーディオブックを返す。
// GET /api/audiobooks/featured
func (h *CatalogHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListFeatured(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"audiobooks": toAudiobookResponses(books),
	})
}

// ListAll はカタログ全件とカテゴリ一覧を返す。
// GET /api/audiobooks
func (h *CatalogHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	categories := make([]categoryResponse, 0, len(listing.Categories))
	for _, c := range listing.Categories {
		categories = append(categories, categoryResponse{ID: c.ID, Name: c.Name})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(catalogResponse{
		Audiobooks: toAudiobookResponses(listing.Audiobooks),
		Categories: categories,
	})
}

// --- ヘルパー関数 ---

func toAudiobookResponse(b *model.Audiobook) audiobookResponse {
	return audiobookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Description:     b.Description,
		CoverURL:        mediaURL(b.CoverPath),
		AudioURL:        mediaURL(b.AudioPath),
		DurationSeconds: b.DurationSeconds,
		CategoryID:      b.CategoryID,
		CategoryName:    b.CategoryName,
	}
}

func toAudiobookResponses(books []model.Audiobook) []audiobookResponse {
	resp := make([]audiobookResponse, 0, len(books))
	for i := range books {
		resp = append(resp, toAudiobookResponse(&books[i]))
	}
	return resp
}

// mediaURL はDBに保存された相対パスを配信URLに変換する。
func mediaURL(p string) string {
	if p == "" {
		return ""
	}
	return mediaURLPrefix + strings.TrimPrefix(p, "/")
}
