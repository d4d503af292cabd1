package domain

import "time"

// Roles assigned to accounts. Residents register as RoleUser; staff roles
// are seeded or granted by an admin.
const (
	RoleUser  = "user"
	RoleTech  = "tech"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleTech || role == RoleAdmin
}

// User represents a registered account
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"` // unique
	Email        string    `json:"email"`    // unique
	PasswordHash string    `json:"-"`        // bcrypt hash, never serialized
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(user *User) error
	GetByID(id int64) (*User, error)
	GetByUsername(username string) (*User, error)
	GetByEmail(email string) (*User, error)
	List() ([]*User, error)
	Update(user *User) error
	Delete(id int64) error
}
