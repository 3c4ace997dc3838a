package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/Hospital-api/pkg/jwt"
)

const (
	testSecret = "test-secret-key-for-unit-tests"
	testIssuer = "hospital-api-test"
	testKey    = "7d1f2c3e-0000-4000-8000-000000000001"
)

func TestJWT_GenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testKey, testIssuer, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	key, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testKey, key)
}

func TestJWT_SobreExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testKey, testIssuer, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	key, err := pkgjwt.Parse(testSecret, tok)
	assert.ErrorIs(t, err, pkgjwt.ErrExpired)
	assert.Equal(t, testKey, key, "la clave permite cerrar la sesión vencida")
}

func TestJWT_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testKey, testIssuer, time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	require.Error(t, err)
	assert.NotErrorIs(t, err, pkgjwt.ErrExpired)
}

func TestJWT_ClaveVaciaRechazada(t *testing.T) {
	_, err := pkgjwt.Generate(testSecret, "", testIssuer, time.Now().Add(time.Hour))
	assert.Error(t, err)
}
