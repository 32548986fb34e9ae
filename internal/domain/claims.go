package domain

import "github.com/golang-jwt/jwt/v5"

const (
	RoleAdmin = "admin"
)

// Claims são as claims dos tokens de serviço emitidos para a API operacional.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
