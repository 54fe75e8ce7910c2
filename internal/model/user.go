package model

import "time"

// Role is the authorization role carried by a user and by its access tokens.
type Role string

const (
	RoleUser    Role = "user"
	RoleMaster  Role = "master"
	RoleManager Role = "manager"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleMaster || r == RoleManager
}

// PersonType distinguishes private customers from companies.
type PersonType string

const (
	PersonIndividual PersonType = "individual"
	PersonLegal      PersonType = "legal"
)

// User represents an account as stored in the `users` table. The
// repository layer works on this struct directly; handlers map it to
// response types that never carry PasswordHash.
//
// Fields:
//
//	ID           – uuid primary key.
//	Email        – unique, lower-cased address.
//	PasswordHash – bcrypt hash.
//	Role         – user, master or manager.
//	CompanyName  – set only when PersonType is legal.
//	CreatedBy    – manager who created the account, nil for self-registration.
type User struct {
	ID           string     // users.id
	FirstName    string     // users.first_name
	LastName     string     // users.last_name
	Email        string     // users.email
	Phone        string     // users.phone
	PasswordHash string     // users.password_hash
	Role         Role       // users.role
	PersonType   PersonType // users.person_type
	CompanyName  *string    // users.company_name
	CreatedBy    *string    // users.created_by
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    *time.Time // users.updated_at
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
