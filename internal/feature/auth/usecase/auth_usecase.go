package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todo_backend/internal/feature/auth/domain/entity"
)

const (
	// maxPasswordBytes はbcryptが扱えるパスワードの最大バイト数です。
	maxPasswordBytes = 72

	// dummyHash はユーザーが存在しない場合のタイミング攻撃緩和用ハッシュです。
	dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// UpdateProfile は名前とメールアドレスを更新します。
	UpdateProfile(ctx context.Context, id uint, name, email string) (*entity.User, error)

	// UpdatePassword はパスワードハッシュを上書きします。
	UpdatePassword(ctx context.Context, id uint, digest string) error

	// Delete はユーザーを削除します。
	Delete(ctx context.Context, id uint) error
}

// TodoRemover はアカウント削除時に所有タスクを一括削除します。
type TodoRemover interface {
	DeleteAllByOwner(ctx context.Context, ownerID uint) (int64, error)
}

// PasswordHasher はパスワードのハッシュ化と検証を定義します。
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// TokenIssuer はセッショントークンの発行を定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenIssuer interface {
	Issue(userID uint) (string, error)
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users  UserRepository
	todos  TodoRemover
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, todos TodoRemover, hasher PasswordHasher, tokens TokenIssuer) *authUsecase {
	return &authUsecase{
		users:  users,
		todos:  todos,
		hasher: hasher,
		tokens: tokens,
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// validatePassword はbcryptでハッシュ化可能なパスワードかチェックします。
func validatePassword(password string) error {
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// Register は新規ユーザーを登録し、セッショントークンを発行します。
// メールアドレスが既に使われている場合はErrEmailAlreadyExistsを返します。
func (u *authUsecase) Register(ctx context.Context, name, email, password string) (*entity.User, string, error) {
	if blank(name) || blank(email) || password == "" {
		return nil, "", ErrMissingFields
	}
	if err := validatePassword(password); err != nil {
		return nil, "", err
	}

	// 事前チェック（最終的な一意性はユニークインデックスが保証する）
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, "", fmt.Errorf("failed to look up email: %w", err)
	}

	hashed, err := u.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	user := &entity.User{Name: name, Email: email, Password: hashed}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// Login はユーザーを認証し、成功時にセッショントークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	if blank(email) || password == "" {
		return nil, "", ErrMissingFields
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	digest := dummyHash
	if user != nil {
		digest = user.Password
	}

	// 常にパスワードを検証し、ユーザー未検出とパスワード不一致を区別しない
	match := u.hasher.Verify(password, digest)
	if user == nil || !match {
		return nil, "", ErrInvalidCredentials
	}

	token, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// Me は現在のユーザーを返します。
func (u *authUsecase) Me(ctx context.Context, userID uint) (*entity.User, error) {
	return u.users.FindByID(ctx, userID)
}

// UpdateProfile は名前とメールアドレスを更新します。
// 他のユーザーが既に使っているメールアドレスへの変更はErrEmailAlreadyExistsを返します。
// 発行済みトークンは無効化されません。
func (u *authUsecase) UpdateProfile(ctx context.Context, userID uint, name, email string) (*entity.User, error) {
	if blank(name) || blank(email) {
		return nil, ErrMissingFields
	}

	existing, err := u.users.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != userID:
		return nil, ErrEmailAlreadyExists
	case err != nil && !errors.Is(err, ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	return u.users.UpdateProfile(ctx, userID, name, email)
}

// ChangePassword は現在のパスワードを再検証した上で新しいパスワードに変更します。
// 発行済みトークンは無効化されません。
func (u *authUsecase) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return ErrMissingFields
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !u.hasher.Verify(currentPassword, user.Password) {
		return ErrIncorrectPassword
	}

	hashed, err := u.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return u.users.UpdatePassword(ctx, userID, hashed)
}

// DeleteAccount は所有タスクを削除した後にユーザーを削除します。
// タスク削除に失敗した場合、ユーザーは削除されません。
func (u *authUsecase) DeleteAccount(ctx context.Context, userID uint) error {
	if _, err := u.todos.DeleteAllByOwner(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete owned todos: %w", err)
	}
	return u.users.Delete(ctx, userID)
}
