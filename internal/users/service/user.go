package service

import (
	"context"
	"errors"
	userserrors "locmaroc/internal/users/errors"
	"locmaroc/internal/users/repository"
	"locmaroc/internal/users/validator"
	"locmaroc/pkg/auth"
	"locmaroc/pkg/config"
	apperrors "locmaroc/pkg/errors"
	"locmaroc/pkg/model"
	"locmaroc/pkg/sanitizer"
)

const invalidCredentials = "Invalid email or password"

type UserService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	Profile(ctx context.Context, session auth.Session) (*model.User, error)
	UpdateProfile(ctx context.Context, session auth.Session, update *model.ProfileUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, session auth.Session, req *model.ChangePasswordRequest) error
	PublicProfile(ctx context.Context, userID string) (*model.PublicProfile, error)
}

type userService struct {
	repo      repository.UserRepository
	issuer    *auth.TokenIssuer
	validator *validator.UserValidator
	cfg       *config.Config
}

func NewUserService(repo repository.UserRepository, issuer *auth.TokenIssuer, validator *validator.UserValidator, cfg *config.Config) UserService {
	return &userService{
		repo:      repo,
		issuer:    issuer,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	req.FirstName = sanitizer.SanitizeText(req.FirstName)
	req.LastName = sanitizer.SanitizeText(req.LastName)
	req.Email = sanitizer.SanitizeEmail(req.Email)
	if phone := sanitizer.SanitizePhone(req.Phone); phone != "" {
		req.Phone = phone
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Internal("Failed to create account", err)
	}

	user := &model.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		TrustScore:   model.DefaultTrustScore,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("A user with this email already exists")
		}
		s.cfg.Log.Error("Failed to create user", "error", err)
		return nil, apperrors.Internal("Failed to create account", err)
	}

	s.cfg.Log.Info("User registered successfully", "id", user.ID)
	return s.respond(user)
}

func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	req.Email = sanitizer.SanitizeEmail(req.Email)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(invalidCredentials)
		}
		return nil, apperrors.Internal("Failed to log in", err)
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		s.cfg.Log.Warn("Login failed", "user_id", user.ID)
		return nil, apperrors.Unauthorized(invalidCredentials)
	}
	if !user.IsActive {
		return nil, apperrors.Forbidden("This account is disabled")
	}

	return s.respond(user)
}

func (s *userService) Profile(ctx context.Context, session auth.Session) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) || errors.Is(err, userserrors.ErrInvalidID) {
			return nil, apperrors.NotFound("User")
		}
		return nil, apperrors.Internal("Failed to retrieve profile", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, session auth.Session, update *model.ProfileUpdate) (*model.User, error) {
	sanitizeProfile(update)
	if update.FirstName == nil && update.LastName == nil && update.Phone == nil && update.Address == nil {
		return nil, apperrors.InvalidInput("No profile fields to update")
	}
	if err := s.validate(update); err != nil {
		return nil, err
	}

	user, err := s.repo.UpdateProfile(ctx, session.UserID, update)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) || errors.Is(err, userserrors.ErrInvalidID) {
			return nil, apperrors.NotFound("User")
		}
		s.cfg.Log.Error("Failed to update profile", "user_id", session.UserID, "error", err)
		return nil, apperrors.Internal("Failed to update profile", err)
	}

	s.cfg.Log.Info("User profile updated successfully", "id", user.ID)
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, session auth.Session, req *model.ChangePasswordRequest) error {
	if err := s.validate(req); err != nil {
		return err
	}

	user, err := s.Profile(ctx, session)
	if err != nil {
		return err
	}
	if err := auth.CheckPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		s.cfg.Log.Warn("Password change rejected", "user_id", user.ID)
		return apperrors.InvalidInput("Current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.Internal("Failed to change password", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFound("User")
		}
		s.cfg.Log.Error("Failed to change password", "user_id", user.ID, "error", err)
		return apperrors.Internal("Failed to change password", err)
	}

	s.cfg.Log.Info("User password changed successfully", "id", user.ID)
	return nil
}

// PublicProfile returns the owner summary shown with public listings.
// Disabled accounts are reported as missing.
func (s *userService) PublicProfile(ctx context.Context, userID string) (*model.PublicProfile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid user ID format")
		}
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("User", userID)
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}
	if !user.IsActive {
		return nil, apperrors.NotFoundWithID("User", userID)
	}
	return user.Public(), nil
}

func sanitizeProfile(update *model.ProfileUpdate) {
	if update.FirstName != nil {
		*update.FirstName = sanitizer.SanitizeText(*update.FirstName)
	}
	if update.LastName != nil {
		*update.LastName = sanitizer.SanitizeText(*update.LastName)
	}
	if update.Address != nil {
		*update.Address = sanitizer.SanitizeText(*update.Address)
	}
	if update.Phone != nil {
		if phone := sanitizer.SanitizePhone(*update.Phone); phone != "" {
			*update.Phone = phone
		}
	}
}

func (s *userService) respond(user *model.User) (*model.AuthResponse, error) {
	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}
	return &model.AuthResponse{Token: token, User: user}, nil
}

func (s *userService) validate(req any) error {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("User validation failed", "error", err)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperrors.Validation("Invalid input", verrs.Details())
		}
		return apperrors.Validation("Invalid input", map[string]any{"error": err.Error()})
	}
	return nil
}
