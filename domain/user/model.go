package user

// User is one row of the users table
type User struct {
	ID        string `db:"id"`
	Username  string `db:"username"`
	Password  string `db:"password"`
	FullName  string `db:"full_name"`
	IsAdmin   bool   `db:"is_admin"`
	CreatedAt string `db:"created_at"`
}

// Response is the user shape exposed over the API; passwords stay out.
type Response struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	IsAdmin   bool   `json:"isAdmin"`
	CreatedAt string `json:"createdAt"`
}

// ListResponse wraps the admin user listing
type ListResponse struct {
	Users []Response `json:"users"`
}
