package domain

import "time"

// UserProfile holds the self-editable part of a user account.
type UserProfile struct {
	FirstName  string `json:"firstName"            bson:"firstName"            validate:"required,max=50"`
	LastName   string `json:"lastName"             bson:"lastName"             validate:"required,max=50"`
	Email      string `json:"email"                bson:"email"                validate:"required,email"`
	Department string `json:"department,omitempty" bson:"department,omitempty"`
	Position   string `json:"position,omitempty"   bson:"position,omitempty"`
	Phone      string `json:"phone,omitempty"      bson:"phone,omitempty"`
}

// User models an authenticated actor in the system.
type User struct {
	ID           string `json:"id"   bson:"_id,omitempty"`
	UserProfile  `bson:",inline"`
	PasswordHash string     `json:"-"                   bson:"password"`
	Role         Role       `json:"role"                bson:"role"                validate:"required,oneof=admin hr client_manager employee"`
	IsActive     bool       `json:"isActive"            bson:"isActive"`
	LastLogin    *time.Time `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"           bson:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"           bson:"updatedAt"`
}

// Summary is the populated form of a user reference.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

// FullName joins first and last name.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	return u.FirstName + " " + u.LastName
}

// UserSummary is what other records embed when they reference a user.
type UserSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}
