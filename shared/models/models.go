package models

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the stored form of an account. PasswordHash never leaves the
// service; responses use UserView.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role,omitempty"`
	PasswordHash string `json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
