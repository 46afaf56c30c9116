// Package progress はユーザーごとのオーディオブック再生位置を管理する。
package progress

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hitoshi/earshelf/internal/metrics"
	"github.com/hitoshi/earshelf/internal/model"
	"github.com/hitoshi/earshelf/internal/repository"
)

// Service は再生位置の取得・保存を提供する。
// userIDはセッションミドルウェアが解決した値を明示的に受け取る。
type Service struct {
	repo    repository.ProgressRepository
	metrics metrics.MetricsCollector
	now     func() time.Time
}

// NewService はServiceを生成する。mcがnilの場合はメトリクスを記録しない。
func NewService(repo repository.ProgressRepository, mc metrics.MetricsCollector) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Service{
		repo:    repo,
		metrics: mc,
		now:     time.Now,
	}
}

// GetPosition は保存済みの再生位置（秒）を返す。
// 記録がない場合は0を返す。
func (s *Service) GetPosition(ctx context.Context, userID string, audiobookID int64) (int, error) {
	if err := validateIDs(userID, audiobookID); err != nil {
		return 0, err
	}

	rec, err := s.repo.Find(ctx, userID, audiobookID)
	if err != nil {
		slog.Error("failed to load listening progress",
			slog.String("user_id", userID),
			slog.Int64("audiobook_id", audiobookID),
			slog.String("error", err.Error()),
		)
		return 0, model.NewStorageUnavailableError(err)
	}
	if rec == nil {
		return 0, nil
	}

	return rec.CurrentPosition, nil
}

// SaveProgress は再生位置を上書き保存する。
// 負の値は拒否し、保存済みの値は変更しない。巻き戻しも上書きする。
func (s *Service) SaveProgress(ctx context.Context, userID string, audiobookID int64, seconds int) error {
	err := s.saveProgress(ctx, userID, audiobookID, seconds)
	if err != nil {
		s.metrics.RecordProgressSaveFailure(errorCode(err))
		return err
	}
	s.metrics.RecordProgressSaved()
	return nil
}

func (s *Service) saveProgress(ctx context.Context, userID string, audiobookID int64, seconds int) error {
	if err := validateIDs(userID, audiobookID); err != nil {
		return err
	}
	if seconds < 0 {
		return model.NewInvalidInputError("current_time must not be negative")
	}

	err := s.repo.Upsert(ctx, userID, audiobookID, seconds, s.now())
	if errors.Is(err, repository.ErrAudiobookNotFound) {
		return model.NewAudiobookNotFoundError(audiobookID)
	}
	if err != nil {
		slog.Error("failed to save listening progress",
			slog.String("user_id", userID),
			slog.Int64("audiobook_id", audiobookID),
			slog.Int("current_time", seconds),
			slog.String("error", err.Error()),
		)
		return model.NewStorageUnavailableError(err)
	}

	return nil
}

// ResumeOffset はプレイヤーを開いたときのシーク位置を返す。
// 保存済みの正の位置があればその値、なければ0。読み取りのみで書き込みは行わない。
func (s *Service) ResumeOffset(ctx context.Context, userID string, audiobookID int64) (int, error) {
	pos, err := s.GetPosition(ctx, userID, audiobookID)
	if err != nil {
		return 0, err
	}
	if pos <= 0 {
		return 0, nil
	}
	return pos, nil
}

// PercentComplete は再生位置と総再生時間から進捗率（0〜100）を算出する。
// 総再生時間が0以下の場合は0を返す。位置が総再生時間を超える場合は100に丸める。
func PercentComplete(position, duration int) float64 {
	if duration <= 0 {
		return 0
	}
	ratio := float64(position) / float64(duration)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return ratio * 100
}

func validateIDs(userID string, audiobookID int64) error {
	if userID == "" {
		return model.NewUnauthorizedError()
	}
	if audiobookID <= 0 {
		return model.NewInvalidInputError("audiobook_id must be a positive integer")
	}
	return nil
}

func errorCode(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return "UNKNOWN"
}
