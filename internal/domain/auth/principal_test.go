package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalFromClaims(t *testing.T) {
	p, err := PrincipalFromClaims(map[string]interface{}{
		"type":        "access",
		"user_id":     "u-1",
		"role":        "manager",
		"is_admin":    false,
		"employee_id": "e-1",
	})
	require.NoError(t, err)
	assert.True(t, p.IsManager())
	assert.False(t, p.IsAdmin)
	require.NotNil(t, p.EmployeeID)
	assert.Equal(t, "e-1", *p.EmployeeID)

	p, err = PrincipalFromClaims(map[string]interface{}{"type": "access", "role": "employee", "employee_id": nil})
	require.NoError(t, err)
	assert.False(t, p.IsManager())
	assert.Nil(t, p.EmployeeID)

	_, err = PrincipalFromClaims(map[string]interface{}{"type": "refresh"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}
