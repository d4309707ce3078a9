package domain

// Principal is the identity resolved from a validated token. It lives for a
// single request and is never persisted.
type Principal struct {
	Subject string `json:"subject"`
	Role    Role   `json:"role"`
}

// HasRole reports whether the principal holds any of roles.
func (p Principal) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
