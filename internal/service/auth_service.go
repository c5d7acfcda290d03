package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/maximanoob01/hostel-gate-checkk/config"
	"github.com/maximanoob01/hostel-gate-checkk/internal/authz"
	"github.com/maximanoob01/hostel-gate-checkk/internal/dto"
	"github.com/maximanoob01/hostel-gate-checkk/internal/model"
	"github.com/maximanoob01/hostel-gate-checkk/internal/repository"
	"github.com/maximanoob01/hostel-gate-checkk/pkg/jwt"
)

// TokenBlacklist 已注销 Token 的存储（Redis 实现见 pkg/redis）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	ResolveIdentity(ctx context.Context, userID uint) (*authz.Identity, error)
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*model.User, error)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例；blacklist 为 nil 时注销仅清除 Cookie
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validateStruct(req); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 1. 查询用户
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 3. 生成 Token
	token, expiresAt, err := s.jwtMgr.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户登录", zap.Uint("user_id", user.ID), zap.String("username", user.Username))

	identity := identityOf(user)
	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User: dto.UserResponse{
			ID:          user.ID,
			Username:    user.Username,
			FullName:    user.FullName,
			Role:        user.Role,
			Permissions: identity.List(),
		},
	}, nil
}

// Logout 将 Token ID 拉黑至过期
func (s *authService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.blacklist == nil || tokenID == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, tokenID, ttl); err != nil {
		s.logger.Warn("Token 拉黑失败", zap.String("jti", tokenID), zap.Error(err))
		return err
	}
	return nil
}

// ResolveIdentity 按用户 ID 加载身份及权限；停用用户视为不存在
func (s *authService) ResolveIdentity(ctx context.Context, userID uint) (*authz.Identity, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return identityOf(user), nil
}

func (s *authService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.User.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !isNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}
	if err := s.repo.User.GrantPermissions(ctx, user.ID, req.Permissions); err != nil {
		return nil, errors.Join(errors.New("用户已创建但授权失败"), err)
	}

	s.logger.Info("用户已创建", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	return user, nil
}

func identityOf(user *model.User) *authz.Identity {
	grants := make([]string, 0, len(user.Permissions))
	for _, p := range user.Permissions {
		grants = append(grants, p.Codename)
	}
	return authz.NewIdentity(user.ID, user.Username, user.FullName, user.Role, grants)
}
