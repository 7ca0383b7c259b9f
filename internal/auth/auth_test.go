package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/projecthub/internal/models"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(sub string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub": sub,
		"aud": "projecthub",
		"iss": "https://issuer/",
		"exp": time.Now().Add(5 * time.Minute).Unix(),
		"nbf": time.Now().Add(-time.Minute).Unix(),
		"iat": time.Now().Add(-time.Minute).Unix(),
	}
}

func TestCallerFromHeader(t *testing.T) {
	t.Parallel()
	v := NewHS256Verifier(testSecret, "projecthub", "https://issuer/")

	claims := validClaims("user-123")
	claims["preferred_username"] = "alex"
	caller, err := v.CallerFromHeader("Bearer " + mintToken(t, testSecret, claims))
	require.NoError(t, err)
	assert.Equal(t, "user-123", caller.UserID)
	assert.Equal(t, "alex", caller.Username)
}

func TestCallerFromHeaderRejects(t *testing.T) {
	t.Parallel()
	v := NewHS256Verifier(testSecret, "projecthub", "https://issuer/")

	expired := validClaims("u")
	expired["exp"] = time.Now().Add(-time.Hour).Unix()
	wrongAud := validClaims("u")
	wrongAud["aud"] = "someone-else"
	noSub := validClaims("")

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + mintToken(t, "other", validClaims("u"))},
		{"expired", "Bearer " + mintToken(t, testSecret, expired)},
		{"wrong audience", "Bearer " + mintToken(t, testSecret, wrongAud)},
		{"no subject", "Bearer " + mintToken(t, testSecret, noSub)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := v.CallerFromHeader(tt.header)
			assert.ErrorIs(t, err, models.ErrUnauthorized)
		})
	}
}

func TestNewVerifierRequiresKeyMaterial(t *testing.T) {
	t.Parallel()

	_, err := NewVerifier(Options{})
	assert.Error(t, err)

	v, err := NewVerifier(Options{Secret: testSecret})
	require.NoError(t, err)
	defer v.Close()

	caller, err := v.CallerFromToken(mintToken(t, testSecret, validClaims("u1")))
	require.NoError(t, err)
	assert.Equal(t, "u1", caller.UserID)
}

func TestCan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role   models.Role
		action Action
		want   bool
	}{
		{models.RoleProductOwner, ActionManageMembers, true},
		{models.RoleProductOwner, ActionEditBacklog, true},
		{models.RoleScrumMaster, ActionManageSprints, true},
		{models.RoleScrumMaster, ActionManageMembers, false},
		{models.RoleDeveloper, ActionEditBacklog, true},
		{models.RoleDeveloper, ActionRead, true},
		{models.RoleDeveloper, ActionManageSprints, false},
		{models.Role("GUEST"), ActionRead, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Can(tt.role, tt.action), "%s/%s", tt.role, tt.action)
	}
}

type memberMap map[string]models.Role

func (m memberMap) GetMember(_ context.Context, projectID, userID string) (*models.Member, error) {
	role, ok := m[projectID+"/"+userID]
	if !ok {
		return nil, fmt.Errorf("member %s: %w", userID, models.ErrNotFound)
	}
	return &models.Member{ProjectID: projectID, UserID: userID, Role: role}, nil
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	a := NewAuthorizer(memberMap{
		"p1/po":  models.RoleProductOwner,
		"p1/dev": models.RoleDeveloper,
	})
	ctx := context.Background()

	assert.NoError(t, a.Authorize(ctx, models.Caller{UserID: "dev"}, "p1", ActionEditBacklog))
	assert.NoError(t, a.Authorize(ctx, models.Caller{UserID: "po"}, "p1", ActionManageMembers))
	assert.ErrorIs(t, a.Authorize(ctx, models.Caller{UserID: "dev"}, "p1", ActionManageMembers), models.ErrForbidden)
	assert.ErrorIs(t, a.Authorize(ctx, models.Caller{UserID: "stranger"}, "p1", ActionRead), models.ErrForbidden)
	assert.ErrorIs(t, a.Authorize(ctx, models.Caller{UserID: "dev"}, "p2", ActionRead), models.ErrForbidden)
	assert.ErrorIs(t, a.Authorize(ctx, models.Caller{}, "p1", ActionRead), models.ErrUnauthorized)
}
