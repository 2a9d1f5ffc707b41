package auth

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Sees attendance of assigned employees
	RoleEmployee Role = "employee" // Regular employee
)

// Principal is the caller identity carried in an access token.
type Principal struct {
	UserID     string
	EmployeeID *string
	Role       Role
	IsAdmin    bool
}

func (p Principal) IsManager() bool {
	return p.Role == RoleManager || p.Role == RoleOwner
}

// PrincipalFromClaims reads the access-token claim set.
func PrincipalFromClaims(claims map[string]interface{}) (Principal, error) {
	if t, _ := claims["type"].(string); t != "access" {
		return Principal{}, ErrInvalidToken
	}
	p := Principal{}
	p.UserID, _ = claims["user_id"].(string)
	if role, ok := claims["role"].(string); ok {
		p.Role = Role(role)
	}
	p.IsAdmin, _ = claims["is_admin"].(bool)
	if id, ok := claims["employee_id"].(string); ok && id != "" {
		p.EmployeeID = &id
	}
	return p, nil
}
