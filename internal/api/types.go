package api

// User is the account identity returned by the service.
// Role is "ADMIN" for accounts allowed to list all users.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// RoleAdmin is the elevated role string used by the service.
const RoleAdmin = "ADMIN"

// IsAdmin reports whether the user carries the elevated role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Todo is a single todo entry. The ID is assigned server-side; the
// client never generates one.
type Todo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}
