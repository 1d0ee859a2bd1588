package domain

import "time"

type Role string

const (
	RoleUser     Role = "user"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	PasswordHash   string    `json:"-"`
	Role           Role      `json:"role"`
	OrganizationID string    `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasPermission reports whether the role grants at least minRole.
func (r Role) HasPermission(minRole Role) bool {
	rank := map[Role]int{RoleUser: 1, RoleOperator: 2, RoleAdmin: 3}
	return rank[r] >= rank[minRole]
}
