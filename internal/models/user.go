package models

import "time"

// Role is the access tier of a user.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// NoRank is returned for users that do not appear on the leaderboard.
const NoRank = 0

// User represents a row in the PostgreSQL users table.
// It has no password field; see Credentials.
type User struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Group     string    `json:"group"`
	Email     string    `json:"email"`
	Rating    int       `json:"rating"`
	Role      Role      `json:"role"`
	Avatar    string    `json:"avatar"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// Credentials is returned only by the authentication lookup.
type Credentials struct {
	User
	PasswordHash string `json:"-"`
}

// NewUser is the input for creating a user. PasswordHash must already be hashed.
type NewUser struct {
	FullName     string
	Phone        string
	Group        string
	Email        string
	PasswordHash string
	Role         Role
	Rating       int
}

// ProfileUpdate holds the fields a user may edit on their own profile.
type ProfileUpdate struct {
	FullName string
	Phone    string
	Group    string
}

// Principal is the identity attached to a session after login.
type Principal struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Group    string `json:"group"`
	Rating   int    `json:"rating"`
}

func (p *Principal) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }

// PrincipalFromUser snapshots u into a session principal.
func PrincipalFromUser(u *User) *Principal {
	return &Principal{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
		Group:    u.Group,
		Rating:   u.Rating,
	}
}

// RegisterRequest is the body for POST /auth/register (JSON or form).
type RegisterRequest struct {
	FullName        string `json:"fullName"        form:"fullName"        validate:"required,max=200"`
	Phone           string `json:"phone"           form:"phone"           validate:"required,phone"`
	Group           string `json:"group"           form:"group"           validate:"required,max=50"`
	Email           string `json:"email"           form:"email"           validate:"required,email"`
	Password        string `json:"password"        form:"password"        validate:"required"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" validate:"required"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"    form:"email"    validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// AddStudentRequest is the body for POST /admin/add-student.
type AddStudentRequest struct {
	FullName string `json:"fullName" form:"fullName" validate:"required,max=200"`
	Phone    string `json:"phone"    form:"phone"    validate:"required,phone"`
	Group    string `json:"group"    form:"group"    validate:"required,max=50"`
	Email    string `json:"email"    form:"email"    validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// ProfileRequest is the body for POST /profile.
type ProfileRequest struct {
	FullName string `json:"fullName" form:"fullName" validate:"required,max=200"`
	Phone    string `json:"phone"    form:"phone"    validate:"required,phone"`
	Group    string `json:"group"    form:"group"    validate:"required,max=50"`
}

// SetActiveRequest is the body for POST /admin/set-active/{id}.
type SetActiveRequest struct {
	Active bool `json:"active" form:"active"`
}
