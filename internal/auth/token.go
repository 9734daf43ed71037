package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"todo-api/internal/domain"
)

// TokenType tags a token so an access token is never accepted where a
// refresh token is expected, and the other way round.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

const (
	DefaultAccessTTL  = 5 * time.Minute
	DefaultRefreshTTL = 24 * time.Hour
	DefaultIssuer     = "todo-api"
)

// Claims is the payload of every token minted by Issuer.
type Claims struct {
	Username string    `json:"username"`
	Type     TokenType `json:"type"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject of the token.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid subject %q", c.Subject)
	}
	return id, nil
}

// Identity converts verified claims into the caller identity.
func (c *Claims) Identity() (domain.Identity, error) {
	id, err := c.UserID()
	if err != nil {
		return domain.Identity{}, err
	}
	identity := domain.Identity{
		UserID:   id,
		Username: c.Username,
		TokenID:  c.ID,
	}
	if c.ExpiresAt != nil {
		identity.TokenExpiresAt = c.ExpiresAt.Time
	}
	return identity, nil
}

// Pair is the access/refresh couple returned at login.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Config controls token signing and lifetimes.
type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

// Issuer mints and verifies HS256 tokens with a process-wide secret.
type Issuer struct {
	key        []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(cfg Config) (*Issuer, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Issuer{
		key:        []byte(secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        cfg.Now,
	}, nil
}

// Issue mints a fresh access/refresh pair for user.
func (i *Issuer) Issue(user *domain.User) (Pair, error) {
	if user == nil || user.ID <= 0 {
		return Pair{}, errors.New("issue token: user is required")
	}
	access, err := i.sign(user.ID, user.Username, TokenTypeAccess, i.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.sign(user.ID, user.Username, TokenTypeRefresh, i.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// IssueAccess mints a new access token for the subject of verified refresh claims.
func (i *Issuer) IssueAccess(refresh *Claims) (string, error) {
	if refresh == nil || refresh.Type != TokenTypeRefresh {
		return "", domain.ErrTokenInvalid
	}
	id, err := refresh.UserID()
	if err != nil {
		return "", &domain.Error{Kind: domain.KindTokenInvalid, Message: domain.ErrTokenInvalid.Message, Cause: err}
	}
	return i.sign(id, refresh.Username, TokenTypeAccess, i.accessTTL)
}

// Verify checks signature, issuer and expiry, then the token type. Expired
// tokens fail with domain.ErrTokenExpired, everything else with
// domain.ErrTokenInvalid.
func (i *Issuer) Verify(tokenString string, expected TokenType) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, domain.ErrTokenInvalid
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}

	if claims.Type != expected {
		return nil, &domain.Error{Kind: domain.KindTokenInvalid, Message: "token has wrong type"}
	}
	if claims.ID == "" {
		return nil, &domain.Error{Kind: domain.KindTokenInvalid, Message: "token has no id"}
	}
	if _, err := claims.UserID(); err != nil {
		return nil, &domain.Error{Kind: domain.KindTokenInvalid, Message: domain.ErrTokenInvalid.Message, Cause: err}
	}
	return &claims, nil
}

func (i *Issuer) sign(userID int64, username string, typ TokenType, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		Username: username,
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return &domain.Error{Kind: domain.KindTokenExpired, Message: domain.ErrTokenExpired.Message, Cause: err}
	}
	return &domain.Error{Kind: domain.KindTokenInvalid, Message: domain.ErrTokenInvalid.Message, Cause: err}
}
