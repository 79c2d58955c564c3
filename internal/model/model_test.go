package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasRole(t *testing.T) {
	tests := []struct {
		name     string
		roles    []RoleName
		required RoleName
		want     bool
	}{
		{"admin present", []RoleName{RoleAgent, RoleAdmin}, RoleAdmin, true},
		{"admin absent", []RoleName{RoleAgent, RoleBackoffice}, RoleAdmin, false},
		{"no roles", nil, RoleAgent, false},
		{"unknown required", []RoleName{RoleAdmin}, RoleName("root"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasRole(tt.roles, tt.required))
			assert.Equal(t, tt.want, User{Roles: tt.roles}.HasRole(tt.required))
		})
	}
}

func TestRoleNameValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleBackoffice.Valid())
	assert.False(t, RoleName("Admin").Valid())
}

func TestDeriveSymbol(t *testing.T) {
	assert.Equal(t, "ACM", DeriveSymbol("Acme"))
	assert.Equal(t, "AB", DeriveSymbol("ab"))
	assert.Equal(t, "ÉCO", DeriveSymbol("école"))
	assert.Equal(t, "", DeriveSymbol("  "))
}

func TestUserTokenExpired(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.False(t, UserToken{ExpiresAt: now.Add(time.Second)}.Expired(now))
	assert.True(t, UserToken{ExpiresAt: now}.Expired(now))
}

func TestLeadDisplayID(t *testing.T) {
	l := Lead{CompanySymbol: "ACM", FullName: "Jane Doe"}
	assert.Equal(t, "ACM-Jane Doe", l.DisplayID())
}

func TestCommentAuthoredBy(t *testing.T) {
	id := uint64(7)
	assert.True(t, CompanyComment{UserID: &id}.AuthoredBy(7))
	assert.False(t, CompanyComment{UserID: &id}.AuthoredBy(8))
	assert.False(t, CompanyComment{}.AuthoredBy(7))
}
