package model

import "strings"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole normalizes backend role strings ("admin", "ROLE_ADMIN", ...).
func ParseRole(raw string) Role {
	value := strings.ToUpper(strings.TrimSpace(raw))
	value = strings.TrimPrefix(value, "ROLE_")
	switch Role(value) {
	case RoleUser, RoleAdmin:
		return Role(value)
	}
	return ""
}

type User struct {
	Id            string  `json:"id"`
	FullName      string  `json:"fullName"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone,omitempty"`
	Role          Role    `json:"role,omitempty"`
	Status        string  `json:"status,omitempty"`
	JoinDate      string  `json:"joinDate,omitempty"`
	TotalBookings int     `json:"totalBookings,omitempty"`
	TotalSpent    float64 `json:"totalSpent,omitempty"`
}

// UserPayload is a user record from the backend (auth responses, user
// details and the admin listing all share it).
type UserPayload struct {
	Id            FlexibleID `json:"id"`
	FullName      string     `json:"fullName"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	JoinDate      string     `json:"joinDate"`
	TotalBookings int        `json:"totalBookings"`
	TotalSpent    float64    `json:"totalSpent"`
}

func (p UserPayload) ToUser() User {
	name := p.FullName
	if name == "" {
		name = p.Name
	}
	return User{
		Id:            p.Id.String(),
		FullName:      name,
		Email:         p.Email,
		Phone:         p.Phone,
		Role:          ParseRole(p.Role),
		Status:        p.Status,
		JoinDate:      p.JoinDate,
		TotalBookings: p.TotalBookings,
		TotalSpent:    p.TotalSpent,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// AuthResponse is returned by login and register: a token, a role and the
// user fields inlined next to them.
type AuthResponse struct {
	UserPayload
	Token string `json:"token"`
}
