package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")
	employeeID := "0199a1b2-0000-7000-8000-000000000001"

	token, expiresAt, err := svc.GenerateAccessToken(auth.Principal{
		UserID:     "u-1",
		EmployeeID: &employeeID,
		Role:       auth.RoleManager,
	}, time.Hour)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)

	p, err := auth.PrincipalFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleManager, p.Role)
	require.NotNil(t, p.EmployeeID)
	assert.Equal(t, employeeID, *p.EmployeeID)
}
