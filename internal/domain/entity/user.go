package entity

import "time"

// User is an identity reference resolved by the identity collaborator.
// The service reads users; it never manages them.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	EmployeeID   string    `json:"employee_id"`
	Designation  string    `json:"designation"`
	Role         string    `json:"role"`
	Department   string    `json:"department"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor is the authenticated principal attached to a request.
type Actor struct {
	UserID     int64  `json:"user_id"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// IsAdmin reports whether the actor holds the admin override role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
