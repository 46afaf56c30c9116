// Package auth はユーザー登録・ログイン認証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hitoshi/earshelf/internal/metrics"
	"github.com/hitoshi/earshelf/internal/model"
	"github.com/hitoshi/earshelf/internal/repository"
	"github.com/hitoshi/earshelf/internal/security"
)

// PasswordHasher はパスワードのハッシュ化と照合のインターフェース。
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare は一致しない場合にsecurity.ErrPasswordMismatchを返す。
	Compare(hash, password string) error
}

// RegisterInput はサインアップの入力値。
type RegisterInput struct {
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      PasswordHasher
	metrics     metrics.MetricsCollector
	validate    *validator.Validate
	config      ServiceConfig
}

// NewService はServiceを生成する。mcがnilの場合はメトリクスを記録しない。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	hasher PasswordHasher,
	mc metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	// エラーのフィールド名はJSONタグ名で返す
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		metrics:     mc,
		validate:    v,
		config:      config,
	}
}

// Register は新規ユーザーを登録し、ユーザーIDを返す。
// ユーザー名・メールアドレスの重複は大文字小文字を区別した完全一致で判定する。
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	userID, err := s.register(ctx, in)
	s.metrics.RecordSignup(err == nil)
	return userID, err
}

func (s *Service) register(ctx context.Context, in RegisterInput) (string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := s.validate.Struct(in); err != nil {
		return "", toValidationError(err)
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return "", storageError("failed to check duplicate user", err)
	}
	if exists {
		slog.Info("signup rejected: duplicate account", slog.String("username", in.Username))
		return "", model.NewDuplicateAccountError()
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, security.ErrPasswordTooLong) {
		// マルチバイト文字で72文字以内でも72バイトを超える場合
		return "", model.NewValidationError(map[string]string{
			"password": "72バイト以内で入力してください。",
		})
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.userRepo.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicateUser) {
		// 重複確認とINSERTの間に同名ユーザーが作成された場合
		return "", model.NewDuplicateAccountError()
	}
	if err != nil {
		return "", storageError("failed to create user", err)
	}

	slog.Info("new user created",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user.ID, nil
}

// Authenticate はメールアドレスとパスワードを検証し、セッションを発行する。
// ユーザー未登録とパスワード不一致は同じAUTH_FAILEDエラーを返し、
// 区別はサーバーログにのみ記録する。
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.Session, error) {
	session, err := s.authenticate(ctx, strings.TrimSpace(email), password)
	s.metrics.RecordLogin(err == nil)
	return session, err
}

func (s *Service) authenticate(ctx context.Context, email, password string) (*model.Session, error) {
	if email == "" || password == "" {
		return nil, model.NewAuthFailedError()
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, storageError("failed to find user", err)
	}
	if user == nil {
		slog.Warn("login failed", slog.String("reason", "user_not_found"))
		return nil, model.NewAuthFailedError()
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if !errors.Is(err, security.ErrPasswordMismatch) {
			slog.Error("failed to verify password hash",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
		slog.Warn("login failed",
			slog.String("reason", "password_mismatch"),
			slog.String("user_id", user.ID),
		)
		return nil, model.NewAuthFailedError()
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, storageError("failed to create session", err)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return session, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
// セッションが無効な場合はUNAUTHORIZEDエラーを返す。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, model.NewUnauthorizedError()
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, storageError("failed to find session", err)
	}
	if session == nil {
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, storageError("failed to find user", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	return user, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// toValidationError はvalidatorのエラーをフィールド単位のINVALID_INPUTに変換する。
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return model.NewInvalidInputError(err.Error())
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = validationMessage(fe)
	}
	return model.NewValidationError(fields)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "必須項目です。"
	case "min":
		return fmt.Sprintf("%s文字以上で入力してください。", fe.Param())
	case "max":
		return fmt.Sprintf("%s文字以内で入力してください。", fe.Param())
	case "email":
		return "メールアドレスの形式が正しくありません。"
	case "eqfield":
		return "パスワードが一致しません。"
	default:
		return "入力値が不正です。"
	}
}

func storageError(msg string, err error) error {
	slog.Error(msg, slog.String("error", err.Error()))
	return model.NewStorageUnavailableError(err)
}
