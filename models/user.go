package models

import "time"

// UserRole представляет уровни доступа, соответствующие ENUM в БД.
// Роли упорядочены: каждая следующая включает возможности предыдущей.
type UserRole string

const (
	RoleMember       UserRole = "member"
	RoleLeagueAdmin  UserRole = "league_admin"
	RoleOwner        UserRole = "owner"
	RolePrimaryOwner UserRole = "primary_owner"
)

var roleRank = map[UserRole]int{
	RoleMember:       0,
	RoleLeagueAdmin:  1,
	RoleOwner:        2,
	RolePrimaryOwner: 3,
}

// Valid reports whether the role is one of the known tiers.
func (r UserRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether the role grants at least the capabilities of other.
func (r UserRole) AtLeast(other UserRole) bool {
	return roleRank[r] >= roleRank[other]
}

type User struct {
	ID           int       `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	Approved     bool      `json:"approved" db:"approved"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
