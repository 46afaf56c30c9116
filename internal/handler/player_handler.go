package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/earshelf/internal/middleware"
	"github.com/hitoshi/earshelf/internal/model"
)

// AudiobookFinder はプレイヤーが必要とするカタログ検索インターフェース。
type AudiobookFinder interface {
	GetAudiobook(ctx context.Context, id int64) (*model.Audiobook, error)
}

// ResumeOffsetReader は再生再開位置を取得するインターフェース。
type ResumeOffsetReader interface {
	ResumeOffset(ctx context.Context, userID string, audiobookID int64) (int, error)
}

// LibraryChecker はライブラリへの追加有無を判定するインターフェース。
type LibraryChecker interface {
	Contains(ctx context.Context, userID string, audiobookID int64) (bool, error)
}

// PlayerHandler はプレイヤー画面のHTTPハンドラー。
type PlayerHandler struct {
	catalog  AudiobookFinder
	progress ResumeOffsetReader
	library  LibraryChecker
}

// NewPlayerHandler はPlayerHandlerを生成する。
func NewPlayerHandler(catalog AudiobookFinder, progress ResumeOffsetReader, library LibraryChecker) *PlayerHandler {
	return &PlayerHandler{
		catalog:  catalog,
		progress: progress,
		library:  library,
	}
}

// playerResponse はプレイヤー画面のレスポンス。
type playerResponse struct {
	audiobookResponse
	ResumeOffset int  `json:"resume_offset"`
	InLibrary    bool `json:"in_library"`
}

// GetPlayer はオーディオブックと再生再開位置を返す。
// GET /api/player/{id}
func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	audiobookID, ok := parseAudiobookID(chi.URLParam(r, "id"))
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidInputError("audiobook_idが不正です。"))
		return
	}

	book, err := h.catalog.GetAudiobook(r.Context(), audiobookID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	offset, err := h.progress.ResumeOffset(r.Context(), userID, audiobookID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	inLibrary, err := h.library.Contains(r.Context(), userID, audiobookID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	view := model.PlayerView{
		Audiobook:    *book,
		ResumeOffset: offset,
		InLibrary:    inLibrary,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(playerResponse{
		audiobookResponse: toAudiobookResponse(&view.Audiobook),
		ResumeOffset:      view.ResumeOffset,
		InLibrary:         view.InLibrary,
	})
}
