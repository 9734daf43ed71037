package service

import (
	"context"
	"errors"
	"fmt"

	"todo-api/internal/auth"
	"todo-api/internal/domain"
	"todo-api/internal/repository"
)

// AuthService runs the token flows: login, refresh, verification and logout.
type AuthService interface {
	Login(ctx context.Context, identifier, password string) (auth.Pair, error)
	// Refresh exchanges a refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	// Verify accepts a valid, unrevoked access or refresh token.
	Verify(ctx context.Context, token string) error
	// Authenticate turns a bearer access token into the caller identity.
	Authenticate(ctx context.Context, accessToken string) (*domain.Identity, error)
	// Logout revokes the caller's access token and, when given, its refresh
	// token. Tokens the server never sees stay valid until they expire.
	Logout(ctx context.Context, caller *domain.Identity, refreshToken string) error
}

type authService struct {
	users    UserService
	issuer   *auth.Issuer
	denylist repository.TokenDenylist
}

func NewAuthService(users UserService, issuer *auth.Issuer, denylist repository.TokenDenylist) AuthService {
	return &authService{
		users:    users,
		issuer:   issuer,
		denylist: denylist,
	}
}

var errTokenRevoked = &domain.Error{Kind: domain.KindTokenInvalid, Message: "token is revoked"}

func (s *authService) Login(ctx context.Context, identifier, password string) (auth.Pair, error) {
	user, err := s.users.Authenticate(ctx, identifier, password)
	if err != nil {
		return auth.Pair{}, err
	}
	return s.issuer.Issue(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.verify(ctx, refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	id, err := claims.UserID()
	if err != nil {
		return "", domain.ErrTokenInvalid
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return "", &domain.Error{Kind: domain.KindTokenInvalid, Message: "token subject no longer exists"}
		}
		return "", err
	}
	if !user.IsActive {
		return "", &domain.Error{Kind: domain.KindTokenInvalid, Message: "token subject is inactive"}
	}

	return s.issuer.IssueAccess(claims)
}

func (s *authService) Verify(ctx context.Context, token string) error {
	_, err := s.verify(ctx, token, auth.TokenTypeAccess)
	if err == nil {
		return nil
	}
	if err == errTokenRevoked || errors.Is(err, domain.ErrTokenExpired) {
		return err
	}
	// not a valid access token; it may still be a valid refresh token
	_, refreshErr := s.verify(ctx, token, auth.TokenTypeRefresh)
	if refreshErr == nil {
		return nil
	}
	if refreshErr == errTokenRevoked {
		return refreshErr
	}
	return err
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*domain.Identity, error) {
	claims, err := s.verify(ctx, accessToken, auth.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	identity, err := claims.Identity()
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindTokenInvalid, Message: domain.ErrTokenInvalid.Message, Cause: err}
	}
	return &identity, nil
}

func (s *authService) Logout(ctx context.Context, caller *domain.Identity, refreshToken string) error {
	if caller == nil {
		return domain.ErrUnauthenticated
	}

	if refreshToken != "" {
		claims, err := s.issuer.Verify(refreshToken, auth.TokenTypeRefresh)
		switch {
		case errors.Is(err, domain.ErrTokenExpired):
			// nothing left to revoke
		case err != nil:
			return &domain.Error{Kind: domain.KindValidation, Field: "refresh", Message: "token is invalid", Cause: err}
		default:
			id, err := claims.UserID()
			if err != nil || id != caller.UserID {
				return domain.ValidationError("refresh", "token does not belong to the current user")
			}
			if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
				return fmt.Errorf("revoke refresh token: %w", err)
			}
		}
	}

	if caller.TokenID != "" {
		if err := s.denylist.Revoke(ctx, caller.TokenID, caller.TokenExpiresAt); err != nil {
			return fmt.Errorf("revoke access token: %w", err)
		}
	}
	return nil
}

func (s *authService) verify(ctx context.Context, token string, typ auth.TokenType) (*auth.Claims, error) {
	claims, err := s.issuer.Verify(token, typ)
	if err != nil {
		return nil, err
	}
	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errTokenRevoked
	}
	return claims, nil
}
