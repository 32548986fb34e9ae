package authenticating

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lfvieira/ads-sync-api/internal/config"
	"github.com/lfvieira/ads-sync-api/internal/domain"
	errorcodes "github.com/lfvieira/ads-sync-api/pkg/apiErrors"
)

// Validade do token emitido. Após esse prazo o chamador precisa trocar o
// segredo por um token novo.
const tokenTTL = 24 * time.Hour

type Authenticator interface {
	IssueToken(secret string) (string, error)
	ValidateToken(tokenString string) (*domain.Claims, error)
}

type Service struct {
	cfg *config.Config
}

func NewService(cfg *config.Config) Authenticator {
	return &Service{cfg: cfg}
}

// IssueToken troca o segredo compartilhado por um JWT de administrador.
// A comparação é em tempo constante para não vazar o tamanho do acerto.
func (s *Service) IssueToken(secret string) (string, error) {
	if secret == "" {
		return "", NewAuthError(ErrMissingRequiredData, errorcodes.ErrMissingRequiredData, "Segredo é obrigatório")
	}

	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.Auth.Secret)) != 1 {
		return "", NewAuthError(ErrInvalidCredentials, errorcodes.ErrInvalidCredentials, "Segredo incorreto")
	}

	now := time.Now()
	claims := &domain.Claims{
		Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(s.cfg.Auth.Secret))
	if err != nil {
		return "", NewAuthError(err, errorcodes.ErrInternalServer, "Erro ao gerar token de autenticação")
	}

	return signed, nil
}

func (s *Service) ValidateToken(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Auth.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewAuthError(ErrExpiredToken, errorcodes.ErrExpiredToken, "")
		}
		return nil, NewAuthError(ErrInvalidToken, errorcodes.ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, NewAuthError(ErrInvalidToken, errorcodes.ErrInvalidToken, "")
	}

	return claims, nil
}
