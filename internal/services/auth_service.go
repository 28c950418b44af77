package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/visaprep/internal/logger"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/repositories"
	"github.com/yoockh/visaprep/internal/utils"
)

type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type AuthResult struct {
	Success bool               `json:"success"`
	UserID  string             `json:"userId"`
	Token   string             `json:"token"`
	Profile models.UserProfile `json:"profile"`
}

type AuthService interface {
	Signup(ctx context.Context, email, password string, profile *models.UserProfile) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, profile *models.UserProfile) (*models.UserProfile, error)
}

type authService struct {
	users  repositories.UserRepository
	tokens TokenConfig
	log    logrus.FieldLogger
}

func NewAuthService(users repositories.UserRepository, tokens TokenConfig, log logrus.FieldLogger) AuthService {
	if log == nil {
		log = logger.Discard()
	}
	return &authService{users: users, tokens: tokens, log: log}
}

func (s *authService) Signup(ctx context.Context, email, password string, profile *models.UserProfile) (*AuthResult, error) {
	const op = "AuthService.Signup"

	email = strings.TrimSpace(email)
	if email == "" || password == "" || profile == nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Email, password, and profile are required", nil)
	}
	if err := validateProfile(op, profile); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	now := timeNow()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Profile:      *profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.E(utils.CodeConflict, op, "User already exists", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create user", err)
	}

	token, err := s.issue(op, user.ID)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"op": op, "user_id": user.ID}).Info("user signed up")
	return &AuthResult{Success: true, UserID: user.ID, Token: token, Profile: user.Profile}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	const op = "AuthService.Login"

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "Invalid credentials", nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get user", err)
	}
	if err := utils.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "Invalid credentials", nil)
	}

	token, err := s.issue(op, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Success: true, UserID: user.ID, Token: token, Profile: user.Profile}, nil
}

func (s *authService) Profile(ctx context.Context, userID string) (*models.User, error) {
	const op = "AuthService.Profile"

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "User not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get user", err)
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, profile *models.UserProfile) (*models.UserProfile, error) {
	const op = "AuthService.UpdateProfile"

	if profile == nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Profile data is required", nil)
	}
	if err := validateProfile(op, profile); err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfile(ctx, userID, *profile, timeNow()); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "User not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to update profile", err)
	}
	return profile, nil
}

func (s *authService) issue(op, userID string) (string, error) {
	token, err := utils.SignToken(s.tokens.Secret, s.tokens.Issuer, userID, s.tokens.TTL, timeNow())
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return token, nil
}

func validateProfile(op string, p *models.UserProfile) error {
	if strings.TrimSpace(p.VisaType) == "" || strings.TrimSpace(p.Country) == "" {
		return utils.E(utils.CodeInvalidArgument, op, "profile.visaType and profile.country are required", nil)
	}
	return nil
}
