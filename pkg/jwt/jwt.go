package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrExpired el sobre está bien firmado pero su fecha de expiración ya pasó.
var ErrExpired = errors.New("jwt: sobre de sesión expirado")

// Claims sobre firmado que transporta la clave opaca de sesión en la cookie.
// La identidad (usuario, centro, rol) nunca viaja en el token: se resuelve en el almacén de sesiones.
type Claims struct {
	jwt.RegisteredClaims
	SessionKey string `json:"sk"`
}

// Generate firma un sobre con la clave de sesión que expira en expiresAt.
func Generate(secret, sessionKey, issuer string, expiresAt time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	if sessionKey == "" {
		return "", fmt.Errorf("jwt: clave de sesión vacía")
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionKey: sessionKey,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida firma y expiración del sobre y devuelve la clave de sesión.
// Si solo falla la expiración devuelve la clave junto con ErrExpired; cualquier otro fallo es un sobre inválido.
func Parse(secret, tokenString string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		// v5 verifica la firma antes que los claims: un sobre expirado ya está autenticado
		// y su clave sirve para cerrar la sesión en el almacén.
		if errors.Is(err, jwt.ErrTokenExpired) {
			if token != nil {
				if c, ok := token.Claims.(*Claims); ok {
					return c.SessionKey, ErrExpired
				}
			}
			return "", ErrExpired
		}
		return "", err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionKey == "" {
		return "", fmt.Errorf("claims inválidos")
	}
	return claims.SessionKey, nil
}
