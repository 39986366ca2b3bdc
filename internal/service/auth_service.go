package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/inkwell/internal/config"
	"github.com/d60-Lab/inkwell/internal/model"
	"github.com/d60-Lab/inkwell/internal/repository"
	"github.com/d60-Lab/inkwell/pkg/jwtauth"
)

type RegisterInput struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

type ProfileInput struct {
	DisplayName string
	AvatarURL   string
	Bio         string
}

// AuthService 邮箱密码注册登录，签发 bearer 令牌
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, *model.User, error)
	Login(ctx context.Context, email, password string) (string, *model.User, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error)
}

type authService struct {
	users repository.UserRepository
	jwt   config.JWTConfig
}

func NewAuthService(users repository.UserRepository, jwt config.JWTConfig) AuthService {
	return &authService{users: users, jwt: jwt}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (string, *model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if email == "" {
		return "", nil, invalid("email", "email is required")
	}
	if username == "" {
		return "", nil, invalid("username", "username is required")
	}
	if len(in.Password) < 6 {
		return "", nil, invalid("password", "password must be at least 6 characters")
	}
	if in.Password != in.ConfirmPassword {
		return "", nil, invalid("confirm_password", "passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}
	user := &model.User{
		ID:          uuid.New().String(),
		Email:       email,
		Username:    username,
		Password:    string(hash),
		DisplayName: username,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", nil, invalid("email", "email or username already registered")
		}
		return "", nil, err
	}

	token, err := jwtauth.GenerateToken(s.jwt.Secret, s.jwt.TTL(), user.ID, user.Username)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Login 凭证错误统一返回 ErrInvalidCredentials，不区分邮箱不存在与密码不对
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := jwtauth.GenerateToken(s.jwt.Secret, s.jwt.TTL(), user.ID, user.Username)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{
		"display_name": strings.TrimSpace(in.DisplayName),
		"avatar_url":   strings.TrimSpace(in.AvatarURL),
		"bio":          in.Bio,
	}
	if err := s.users.UpdateFields(ctx, user.ID, fields); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, user.ID)
}
