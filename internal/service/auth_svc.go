package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"nhadat_dev_v1/internal/middleware"
	"nhadat_dev_v1/internal/model"
	"nhadat_dev_v1/internal/repository"
)

// ==================== 错误定义 ====================

var (
	// ErrBadCredentials 账号或密码错误（故意不区分哪个错）
	ErrBadCredentials = errors.New("账号或密码错误")
	// ErrAccountDisabled 账号被停用
	ErrAccountDisabled = errors.New("账号已停用")
	// ErrEmailTaken 邮箱已注册
	ErrEmailTaken = errors.New("该邮箱已注册")
)

// ==================== 服务实现 ====================

// AuthService 会话提供方：登录换 JWT，向导据此拿到 OwnerID
type AuthService struct {
	accounts repository.AccountRepository
}

// NewAuthService 创建鉴权服务
func NewAuthService(accounts repository.AccountRepository) *AuthService {
	return &AuthService{accounts: accounts}
}

// Register 注册账号
func (s *AuthService) Register(ctx context.Context, email, password, name, phone string) (*model.Account, error) {
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		ID:       uuid.NewString(),
		Email:    email,
		Password: string(hashed),
		Name:     name,
		Phone:    phone,
		Role:     "user",
		IsActive: true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Login 登录，返回 Access Token
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, err
	}
	if !account.IsActive {
		return "", nil, ErrAccountDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return "", nil, ErrBadCredentials
	}

	token, err := middleware.GenerateAccessToken(account.ID, account.Email, account.Role)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}
