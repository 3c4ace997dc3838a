package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Hospital-api/pkg/textnorm"
)

func TestFold(t *testing.T) {
	cases := map[string]string{
		"  Hôpital  Saint-Éloi ": "hopital saint-eloi",
		"FRANÇOIS":               "francois",
		"":                       "",
		"Dupont":                 "dupont",
	}
	for in, want := range cases {
		assert.Equal(t, want, textnorm.Fold(in), in)
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Jean Dupont", textnorm.Title("jean   dupont"))
}

func TestContains(t *testing.T) {
	assert.True(t, textnorm.Contains("Clinique Sainte-Thérèse", "therese"))
	assert.False(t, textnorm.Contains("Clinique", "hopital"))
}
