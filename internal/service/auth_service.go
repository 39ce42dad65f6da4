package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pulsekit/smsdash/internal/apperrors"
	"github.com/pulsekit/smsdash/internal/auth"
	"github.com/pulsekit/smsdash/internal/model"
	"github.com/pulsekit/smsdash/internal/repository"
)

type AuthService struct {
	ProfileRepo repository.ProfileRepositoryInterface
	InviteRepo  repository.InviteRepositoryInterface
	Tokens      *auth.TokenIssuer
	Now         func() time.Time
}

type SignupInput struct {
	Email      string
	Password   string
	InviteCode string
}

// Signup consumes an invite code and creates a pending profile. New
// accounts always start as role=user, status=pending; an admin approves
// them later.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*model.UserProfile, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.Validation("a valid email is required")
	}
	if len(in.Password) < 8 {
		return nil, apperrors.Validation("password must be at least 8 characters")
	}
	if strings.TrimSpace(in.InviteCode) == "" {
		return nil, apperrors.Validation("invite_code is required")
	}

	userID := uuid.NewString()
	if err := s.InviteRepo.Consume(ctx, in.InviteCode, userID, s.now()); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}

	profile := &model.UserProfile{
		UserID:       userID,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Status:       model.StatusPending,
	}
	if err := s.ProfileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Login checks credentials and issues a session token. Rejected accounts
// cannot log in; pending accounts can, but the gate keeps them out of
// anything requiring approval.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.UserProfile, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	profile, err := s.ProfileRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, "", apperrors.Unauthorized("invalid email or password")
		}
		return nil, "", err
	}
	if !auth.CheckPassword(profile.PasswordHash, password) {
		return nil, "", apperrors.Unauthorized("invalid email or password")
	}
	if profile.Status == model.StatusRejected {
		return nil, "", apperrors.Forbidden("this account has been rejected")
	}

	token, err := s.Tokens.Issue(profile.UserID)
	if err != nil {
		return nil, "", apperrors.Upstream(err)
	}
	return profile, token, nil
}

// Me loads the caller's own profile.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.UserProfile, error) {
	return s.ProfileRepo.GetByID(ctx, userID)
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
