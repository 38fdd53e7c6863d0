// Package identity verifies staff bearer tokens issued by the external identity provider.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prog-Noon/rakaizfoundation/config"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrNotConfigured  = errors.New("staff identity verification is not configured")
	ErrMissingSubject = errors.New("token missing subject claim")
)

// Principal is a verified staff identity
type Principal struct {
	Subject     string `json:"sub"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// IsStaffMember reports whether the principal may use staff tools
func (p *Principal) IsStaffMember() bool {
	return p != nil && (p.IsStaff || p.IsSuperuser)
}

// CanAdminister reports whether the principal may change site settings and delete records
func (p *Principal) CanAdminister() bool {
	return p != nil && p.IsSuperuser
}

// DisplayName returns the name, or the email when no name is known
func (p *Principal) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}

// Verifier turns a raw bearer token into a Principal
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Principal, error)
}

// NewVerifier picks OIDC verification when an issuer is configured, otherwise shared-secret JWTs.
func NewVerifier(ctx context.Context, cfg *config.Config) (Verifier, error) {
	if cfg.OIDCIssuerURL != "" {
		return NewOIDCVerifier(ctx, cfg.OIDCIssuerURL, cfg.OIDCClientID)
	}
	if cfg.JWTSecret != "" {
		return NewHMACVerifier(cfg.JWTSecret), nil
	}
	return nil, ErrNotConfigured
}

// StaffClaims are the claims carried by shared-secret staff tokens
type StaffClaims struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
	jwt.RegisteredClaims
}

// HMACVerifier verifies HS256 tokens signed with a shared secret
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(ctx context.Context, rawToken string) (*Principal, error) {
	claims := &StaffClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	return &Principal{
		Subject:     claims.Subject,
		Email:       claims.Email,
		Name:        claims.Name,
		IsStaff:     claims.IsStaff,
		IsSuperuser: claims.IsSuperuser,
	}, nil
}

// IssueToken signs an HS256 staff token. Used by the dev tooling and tests; production tokens come from the identity provider.
func IssueToken(secret string, p Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := StaffClaims{
		Email:       p.Email,
		Name:        p.Name,
		IsStaff:     p.IsStaff,
		IsSuperuser: p.IsSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// OIDCVerifier verifies ID tokens against an OpenID Connect issuer
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

type oidcClaims struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

func NewOIDCVerifier(ctx context.Context, issuerURL, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init oidc provider %s: %w", issuerURL, err)
	}
	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*Principal, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var claims oidcClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode token claims: %w", err)
	}
	if idToken.Subject == "" {
		return nil, ErrMissingSubject
	}

	return &Principal{
		Subject:     idToken.Subject,
		Email:       claims.Email,
		Name:        claims.Name,
		IsStaff:     claims.IsStaff,
		IsSuperuser: claims.IsSuperuser,
	}, nil
}
