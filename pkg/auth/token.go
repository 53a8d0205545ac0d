package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/procurehub/portal/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// clockSkew tolerates small drift between the portal and its callers.
const clockSkew = 30 * time.Second

// MintAccessToken issues a signed HS256 JWT carrying the caller's id and role.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	if err := checkConfig(cfg); err != nil {
		return "", err
	}
	if cfg.ExpirationMinutes <= 0 {
		return "", errors.New("jwt expiration minutes must be positive")
	}
	if payload.UserID == uuid.Nil {
		return "", errors.New("user id is required")
	}
	if !payload.Role.IsValid() {
		return "", fmt.Errorf("invalid role %q", payload.Role)
	}

	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}

	issued := jwt.NewNumericDate(now)
	claims := AccessTokenClaims{
		UserID: payload.UserID,
		Role:   payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   payload.UserID.String(),
			IssuedAt:  issued,
			NotBefore: issued,
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTokenTTL())),
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseAccessToken validates signature, issuer and lifetime.
func ParseAccessToken(cfg config.JWTConfig, tokenString string) (*AccessTokenClaims, error) {
	return parse(cfg, tokenString, jwt.WithLeeway(clockSkew))
}

// ParseAccessTokenAllowExpired skips lifetime checks so refresh can still read
// the jti of an expired token. Signature and issuer are still enforced.
func ParseAccessTokenAllowExpired(cfg config.JWTConfig, tokenString string) (*AccessTokenClaims, error) {
	claims, err := parse(cfg, tokenString, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	if claims.Issuer != cfg.Issuer {
		return nil, fmt.Errorf("%w: issuer %q", jwt.ErrTokenInvalidIssuer, claims.Issuer)
	}
	return claims, nil
}

// IsExpired reports whether err came from an expired token.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

func checkConfig(cfg config.JWTConfig) error {
	switch {
	case cfg.Secret == "":
		return errors.New("jwt secret is required")
	case cfg.Issuer == "":
		return errors.New("jwt issuer is required")
	}
	return nil
}

func parse(cfg config.JWTConfig, tokenString string, opts ...jwt.ParserOption) (*AccessTokenClaims, error) {
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}

	opts = append(opts,
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	claims := &AccessTokenClaims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims.UserID == uuid.Nil {
		return nil, errors.New("token carries no user id")
	}
	if !claims.Role.IsValid() {
		return nil, fmt.Errorf("token carries unknown role %q", claims.Role)
	}
	return claims, nil
}
