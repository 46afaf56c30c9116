package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/earshelf/internal/middleware"
	"github.com/hitoshi/earshelf/internal/model"
)

// LibraryServiceInterface はライブラリハンドラーが必要とするサービスインターフェース。
type LibraryServiceInterface interface {
	AddToLibrary(ctx context.Context, userID string, audiobookID int64) error
	ListLibrary(ctx context.Context, userID string) ([]model.LibraryItem, error)
}

// LibraryHandler はユーザーライブラリ（ダッシュボード）のHTTPハンドラー。
type LibraryHandler struct {
	service LibraryServiceInterface
}

// NewLibraryHandler はLibraryHandlerを生成する。
func NewLibraryHandler(service LibraryServiceInterface) *LibraryHandler {
	return &LibraryHandler{service: service}
}

// libraryItemResponse はダッシュボードに表示するライブラリ項目。
type libraryItemResponse struct {
	audiobookResponse
	AddedAt         time.Time `json:"added_at"`
	CurrentPosition int       `json:"current_position"`
	PercentComplete float64   `json:"percent_complete"`
}

// ListLibrary はユーザーのライブラリと再生位置を返す。
// GET /api/library
func (h *LibraryHandler) ListLibrary(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	items, err := h.service.ListLibrary(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]libraryItemResponse, 0, len(items))
	for i := range items {
		item := &items[i]
		position := 0
		if item.Progress != nil {
			position = item.Progress.CurrentPosition
		}
		resp = append(resp, libraryItemResponse{
			audiobookResponse: toAudiobookResponse(&item.Audiobook),
			AddedAt:           item.AddedAt,
			CurrentPosition:   position,
			PercentComplete:   item.PercentComplete,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"items": resp,
	})
}

// AddToLibrary はオーディオブックをライブラリに追加する。追加済みの場合も成功とする。
// POST /api/library（audiobook_idをフォームまたはJSONで指定）
func (h *LibraryHandler) AddToLibrary(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	values, err := formValues(w, r, "audiobook_id")
	if err != nil {
		handleServiceError(w, err)
		return
	}

	audiobookID, ok := parseAudiobookID(values["audiobook_id"])
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidInputError("audiobook_idが不正です。"))
		return
	}

	if err := h.service.AddToLibrary(r.Context(), userID, audiobookID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
