package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidRole     = errors.New("invalid role")
	ErrEmptyUsername   = errors.New("username cannot be empty")
	ErrEmptyPassword   = errors.New("password hash cannot be empty")
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func NewRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	default:
		return "", ErrInvalidRole
	}
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

type User struct {
	id           uuid.UUID
	username     string
	passwordHash string
	role         Role
	studentID    string
	createdAt    time.Time
}

func NewUser(username, passwordHash string, role Role, studentID string) (*User, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if passwordHash == "" {
		return nil, ErrEmptyPassword
	}
	if _, err := NewRole(role.String()); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	return &User{
		id:           id,
		username:     username,
		passwordHash: passwordHash,
		role:         role,
		studentID:    studentID,
	}, nil
}

func ReconstructUser(
	id uuid.UUID,
	username, passwordHash string,
	role Role,
	studentID string,
	createdAt time.Time,
) *User {
	return &User{
		id:           id,
		username:     username,
		passwordHash: passwordHash,
		role:         role,
		studentID:    studentID,
		createdAt:    createdAt,
	}
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Username() string     { return u.username }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Role() Role           { return u.role }
func (u *User) StudentID() string    { return u.studentID }
func (u *User) CreatedAt() time.Time { return u.createdAt }

func (u *User) IsAdmin() bool {
	return u.role.IsAdmin()
}
