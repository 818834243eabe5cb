package authz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallerToken_RoundTrip(t *testing.T) {
	secret := []byte("k")
	in := Caller{Name: "alice", Roles: []string{"Cabinet", "Members"}}

	tok, err := GenerateCallerToken(in, secret, time.Hour)
	require.NoError(t, err)

	out, err := ParseCallerToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Roles, out.Roles)
}

func TestParseCallerToken_WrongSecret(t *testing.T) {
	tok, err := GenerateCallerToken(Caller{Name: "alice"}, []byte("k1"), time.Hour)
	require.NoError(t, err)

	_, err = ParseCallerToken(tok, []byte("k2"))
	assert.Error(t, err)
}

func TestParseCallerToken_Expired(t *testing.T) {
	tok, err := GenerateCallerToken(Caller{Name: "alice"}, []byte("k"), -time.Minute)
	require.NoError(t, err)

	_, err = ParseCallerToken(tok, []byte("k"))
	assert.Error(t, err)
}

func TestGuard_IsPrivileged(t *testing.T) {
	tests := []struct {
		name   string
		marker string
		roles  []string
		want   bool
	}{
		{name: "exact match", marker: "cabinet", roles: []string{"Cabinet"}, want: true},
		{name: "substring match", marker: "cabinet", roles: []string{"AI Club Cabinet Member"}, want: true},
		{name: "case insensitive", marker: "cabinet", roles: []string{"CABINET-2026"}, want: true},
		{name: "no match", marker: "cabinet", roles: []string{"Members", "Alumni"}, want: false},
		{name: "no roles", marker: "cabinet", roles: nil, want: false},
		{name: "empty marker privileges no one", marker: "", roles: []string{"Cabinet"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuard(tt.marker)
			got := g.IsPrivileged(&Caller{Name: "x", Roles: tt.roles})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGuard_NilCaller(t *testing.T) {
	g := NewGuard("cabinet")
	assert.False(t, g.IsPrivileged(nil))
}
