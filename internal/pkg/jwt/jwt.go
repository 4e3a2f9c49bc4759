package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const (
	KindAdmin    = "admin"
	KindIdentity = "identity"
)

type Service struct {
	secret []byte
	ttl    time.Duration
}

type Claims struct {
	Kind    string `json:"kind"`
	AdminID int64  `json:"admin_id,omitempty"`
	Phone   string `json:"phone,omitempty"`
	jwtlib.RegisteredClaims
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// GenerateAdminToken issues a session token for the admin interface.
func (s *Service) GenerateAdminToken(adminID int64, email string) (string, error) {
	return s.sign(Claims{
		Kind:    KindAdmin,
		AdminID: adminID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	})
}

// GenerateIdentityToken issues the verified-identity credential returned after
// a successful OTP confirmation. It proves ownership of the phone number for
// the duration of the booking flow.
func (s *Service) GenerateIdentityToken(phoneNumber string) (string, error) {
	return s.sign(Claims{
		Kind:  KindIdentity,
		Phone: phoneNumber,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   phoneNumber,
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	})
}

func (s *Service) sign(claims Claims) (string, error) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses the token and checks that it is of the expected kind.
func (s *Service) Validate(tokenStr, kind string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Kind != kind {
		return nil, errors.New("invalid claims")
	}

	return claims, nil
}
