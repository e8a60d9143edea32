package dto

// RegisterRequest represents admin registration request
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that all required fields are present
func (r *RegisterRequest) Validate() (bool, string) {
	if r.Name == "" || r.Email == "" || r.Password == "" {
		return false, "Name, email and password are required"
	}
	return true, ""
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that all required fields are present
func (r *LoginRequest) Validate() (bool, string) {
	if r.Email == "" || r.Password == "" {
		return false, "Email and password are required"
	}
	return true, ""
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse represents public user data in responses
type UserResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}
