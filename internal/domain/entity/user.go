package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// ValidRole indica si r es un rol conocido.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleStaff
}

// User representa un usuario del sistema (personal de tienda).
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash
	Role         string // admin, staff
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
