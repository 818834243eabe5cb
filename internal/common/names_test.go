package common

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Ada Lovelace", want: "Ada Lovelace"},
		{name: "trims edges", in: "  Ada Lovelace  ", want: "Ada Lovelace"},
		{name: "collapses internal runs", in: "Ada   \t Lovelace", want: "Ada Lovelace"},
		{name: "single word", in: "Ada", want: "Ada"},
		{name: "exactly max length", in: strings.Repeat("a", MaxNameLength), want: strings.Repeat("a", MaxNameLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeName(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeName_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "whitespace only", in: "   \t  "},
		{name: "too long", in: strings.Repeat("a", MaxNameLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeName(tt.in)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}
