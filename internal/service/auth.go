package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Maheshwaran1303/todo-backend-redrf/internal/crypto"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/model"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/permission"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/repository"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/validate"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("token is invalid or expired")
)

// UserStore persists user records.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// TokenDenylist records revoked token ids.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthService handles registration, login, logout and token refresh.
type AuthService struct {
	users    UserStore
	hasher   *crypto.Hasher
	tokens   *crypto.TokenIssuer
	denylist TokenDenylist
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, hasher *crypto.Hasher, tokens *crypto.TokenIssuer, denylist TokenDenylist) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		denylist: denylist,
	}
}

// Register validates the payload and creates a user. Only the hash of the
// password is stored; the confirmation field is dropped here.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.UserResponse, error) {
	if err := validate.Registration(req); err != nil {
		return model.UserResponse{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.UserResponse{}, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return model.UserResponse{}, validate.Single("username", validate.MsgUsernameTaken)
		}
		return model.UserResponse{}, err
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user.ToResponse(), nil
}

// Login verifies credentials and issues a token pair. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return model.LoginResponse{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.hasher.VerifyDummy(req.Password)
			slog.InfoContext(ctx, "login failed")
			return model.LoginResponse{}, ErrInvalidCredentials
		}
		return model.LoginResponse{}, err
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("verifying password for user %d: %w", user.ID, err)
	}
	if !match {
		slog.InfoContext(ctx, "login failed")
		return model.LoginResponse{}, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		return model.LoginResponse{}, err
	}

	return model.LoginResponse{
		Access:   pair.Access,
		Refresh:  pair.Refresh,
		Username: user.Username,
	}, nil
}

// Authenticate resolves an access token to the requester's identity.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (model.Identity, error) {
	claims, err := s.tokens.Parse(accessToken, crypto.AccessToken)
	if err != nil {
		return model.Identity{}, ErrInvalidToken
	}
	if err := s.checkNotRevoked(ctx, claims.ID); err != nil {
		return model.Identity{}, err
	}

	userID, _ := claims.UserID()
	return model.Identity{
		UserID:         userID,
		Username:       claims.Username,
		TokenID:        claims.ID,
		TokenExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the access token the request was made with and, when the
// body names one, the caller's refresh token. A refresh token that fails to
// parse or belongs to someone else is ignored.
func (s *AuthService) Logout(ctx context.Context, id model.Identity, req model.LogoutRequest) error {
	if !id.Authenticated() {
		return permission.ErrNotAuthenticated
	}

	if id.TokenID != "" {
		if err := s.denylist.Revoke(ctx, id.TokenID, id.TokenExpiresAt); err != nil {
			return err
		}
	}

	if req.Refresh != "" {
		claims, err := s.tokens.Parse(req.Refresh, crypto.RefreshToken)
		if err != nil {
			slog.InfoContext(ctx, "logout: ignoring unusable refresh token", "user_id", id.UserID)
		} else if owner, _ := claims.UserID(); owner != id.UserID {
			slog.WarnContext(ctx, "logout: refresh token belongs to another user", "user_id", id.UserID)
		} else if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return err
		}
	}

	slog.InfoContext(ctx, "user logged out", "user_id", id.UserID)
	return nil
}

// Refresh exchanges a valid refresh token for a new access token bound to the
// same user.
func (s *AuthService) Refresh(ctx context.Context, req model.RefreshRequest) (model.RefreshResponse, error) {
	if req.Refresh == "" {
		return model.RefreshResponse{}, validate.Single("refresh", validate.MsgRequired)
	}

	claims, err := s.tokens.Parse(req.Refresh, crypto.RefreshToken)
	if err != nil {
		return model.RefreshResponse{}, ErrInvalidToken
	}
	if err := s.checkNotRevoked(ctx, claims.ID); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			slog.WarnContext(ctx, "refresh with revoked token", "sub", claims.Subject)
		}
		return model.RefreshResponse{}, err
	}

	userID, _ := claims.UserID()
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.RefreshResponse{}, ErrInvalidToken
		}
		return model.RefreshResponse{}, err
	}

	access, err := s.tokens.IssueAccess(user.ID, user.Username)
	if err != nil {
		return model.RefreshResponse{}, err
	}
	return model.RefreshResponse{Access: access}, nil
}

// Me returns the requester's own user record.
func (s *AuthService) Me(ctx context.Context, id model.Identity) (model.UserResponse, error) {
	if !id.Authenticated() {
		return model.UserResponse{}, permission.ErrNotAuthenticated
	}

	user, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrInvalidToken
		}
		return model.UserResponse{}, err
	}
	return user.ToResponse(), nil
}

func (s *AuthService) checkNotRevoked(ctx context.Context, jti string) error {
	revoked, err := s.denylist.IsRevoked(ctx, jti)
	if err != nil {
		return fmt.Errorf("checking token revocation: %w", err)
	}
	if revoked {
		return ErrInvalidToken
	}
	return nil
}
