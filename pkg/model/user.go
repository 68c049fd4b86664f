package model

import "time"

const DefaultTrustScore = 50

type User struct {
	ID               string    `json:"id,omitempty" bson:"_id,omitempty"`
	FirstName        string    `json:"first_name" bson:"first_name"`
	LastName         string    `json:"last_name" bson:"last_name"`
	Email            string    `json:"email" bson:"email"`
	Phone            string    `json:"phone" bson:"phone"`
	Address          string    `json:"address,omitempty" bson:"address,omitempty"`
	PasswordHash     string    `json:"-" bson:"password_hash"`
	TrustScore       int       `json:"trust_score" bson:"trust_score"`
	IdentityVerified bool      `json:"identity_verified" bson:"identity_verified"`
	IsActive         bool      `json:"is_active" bson:"is_active"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=50"`
	LastName  string `json:"last_name" validate:"required,min=1,max=50"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Phone     string `json:"phone" validate:"required,e164"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ProfileUpdate carries the profile fields a user may change. Nil means
// unchanged.
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitnil,min=1,max=50"`
	LastName  *string `json:"last_name,omitempty" validate:"omitnil,min=1,max=50"`
	Phone     *string `json:"phone,omitempty" validate:"omitnil,e164"`
	Address   *string `json:"address,omitempty" validate:"omitempty,max=200"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

// PublicProfile is what other users may see about an owner.
type PublicProfile struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	TrustScore int       `json:"trust_score"`
	JoinDate   time.Time `json:"join_date"`
}

func (u *User) Public() *PublicProfile {
	return &PublicProfile{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		TrustScore: u.TrustScore,
		JoinDate:   u.CreatedAt,
	}
}
