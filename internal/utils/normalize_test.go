package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Descripción", "descripcion"},
		{"  Plaza Constitución  ", "plaza constitucion"},
		{"TORRE TORRE", "torre torre"},
		{"ñandú", "nandu"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in))
	}
}

func TestContainsWord(t *testing.T) {
	tests := []struct {
		name     string
		haystack string
		needle   string
		want     bool
	}{
		{"whole word", "Quiero ir a Torre Torre hoy", "Torre Torre", true},
		{"embedded", "TorreTorreland", "Torre Torre", false},
		{"start of string", "Torre Torre es bonita", "Torre Torre", true},
		{"end of string", "vamos a Torre Torre", "Torre Torre", true},
		{"punctuation boundary", "¿conoces Torre Torre?", "Torre Torre", true},
		{"diacritic fold", "la plaza constitucion", "Plaza Constitución", true},
		{"prefix of longer word", "el parquecito", "parque", false},
		{"multibyte letter after", "Torre Torre中心", "Torre Torre", false},
		{"multibyte letter before", "中Torre Torre", "Torre Torre", false},
		{"multibyte symbol neighbor", "Torre Torre★", "Torre Torre", true},
		{"empty needle", "algo", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsWord(tt.haystack, tt.needle))
		})
	}
}
