package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User-specific validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrEmptyFirstName      = errors.New("first name cannot be empty")
	ErrEmptyLastName       = errors.New("last name cannot be empty")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
	ErrPasswordMismatch    = errors.New("passwords do not match")
)

// User represents a registered user of the application.
// Identity is the email address, which is unique across all users.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	HashedPassword string    `json:"-"` // Never expose the password hash
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given identity fields.
// It generates a new UUID for the user ID and sets the timestamps.
// The caller is responsible for hashing the password and assigning
// HashedPassword before the user is stored.
func NewUser(email, firstName, lastName string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Validate checks if the User has valid data.
// HashedPassword is intentionally not checked here: a freshly constructed
// user has no hash yet. Stores enforce its presence at write time.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}
	if u.FirstName == "" {
		return ErrEmptyFirstName
	}
	if u.LastName == "" {
		return ErrEmptyLastName
	}
	return nil
}

// validateEmailFormat performs basic validation of email format.
// The registration form applies the full validator rules; this is a
// last-line check for users constructed programmatically.
func validateEmailFormat(email string) bool {
	atIndex := strings.Index(email, "@")
	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	domainPart := email[atIndex+1:]
	dotIndex := strings.Index(domainPart, ".")
	return dotIndex > 0 && dotIndex < len(domainPart)-1
}
