package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hitoshi/earshelf/internal/middleware"
	"github.com/hitoshi/earshelf/internal/model"
)

// ProgressSaver は再生位置を保存するインターフェース。
type ProgressSaver interface {
	SaveProgress(ctx context.Context, userID string, audiobookID int64, seconds int) error
}

// ProgressHandler はプレイヤーからの再生位置保存を受け付けるHTTPハンドラー。
type ProgressHandler struct {
	service ProgressSaver
}

// NewProgressHandler はProgressHandlerを生成する。
func NewProgressHandler(service ProgressSaver) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// SaveProgress は再生位置を保存する。
// POST /progress（フォーム: audiobook_id, current_time）
// 成功時は200でボディなし。フィールド欠落・非数値・32bit整数の範囲外は403を返す。
func (h *ProgressHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewUnauthorizedError())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := r.ParseForm(); err != nil {
		rejectProgressRequest(w, "unparsable form")
		return
	}

	audiobookID, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("audiobook_id")), 10, 64)
	if err != nil {
		rejectProgressRequest(w, "invalid audiobook_id")
		return
	}
	// current_positionはINTEGER列のため32bitに収まらない値は不正入力とする
	seconds, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("current_time")), 10, 32)
	if err != nil {
		rejectProgressRequest(w, "invalid current_time")
		return
	}

	if err := h.service.SaveProgress(r.Context(), userID, audiobookID, int(seconds)); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func rejectProgressRequest(w http.ResponseWriter, reason string) {
	slog.Warn("progress save rejected", slog.String("reason", reason))
	writeAPIErrorResponse(w, http.StatusForbidden,
		model.NewInvalidInputError("audiobook_idとcurrent_timeは整数で指定してください。"))
}
