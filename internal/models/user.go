package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRole is the authorization level of an account.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleEditor UserRole = "editor"
	RoleUser   UserRole = "user"
)

// RelationshipState is one entry of a user's relationship map. The map is keyed
// by the other user's hex id. No entry means the two users are strangers.
type RelationshipState string

const (
	// RelationRequestSent is the transient state on the sender's side.
	RelationRequestSent RelationshipState = "request_sent"
	// RelationRequestReceived is the transient state on the receiver's side.
	RelationRequestReceived RelationshipState = "request_received"
	// RelationFriend is the settled state and must be symmetric across both users.
	RelationFriend RelationshipState = "friend"
)

// User represents a user document.
type User struct {
	ID             primitive.ObjectID           `bson:"_id,omitempty" json:"id"`
	Username       string                       `bson:"username" json:"username"`
	Email          string                       `bson:"email" json:"email"`
	HashedPassword string                       `bson:"hashed_password" json:"-"`
	Role           UserRole                     `bson:"role" json:"role"`
	Bio            string                       `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfilePicture string                       `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`
	CoverPhoto     string                       `bson:"cover_photo,omitempty" json:"cover_photo,omitempty"`
	FirebaseUID    string                       `bson:"firebase_uid,omitempty" json:"-"`
	Relationships  map[string]RelationshipState `bson:"relationships,omitempty" json:"relationships,omitempty"`
}

// HexID returns the user's id in its canonical textual form.
func (u *User) HexID() string { return u.ID.Hex() }

// UserCompact is the projection of a user embedded in friend lists and
// pending-request lists.
type UserCompact struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture"`
	Bio            string `json:"bio"`
	CoverPhoto     string `json:"cover_photo"`
}

// ToCompact reduces a user to its compact projection.
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:             u.ID.Hex(),
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
		Bio:            u.Bio,
		CoverPhoto:     u.CoverPhoto,
	}
}

// SignupRequest defines the request body for local registration.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SigninRequest defines the request body for local login.
type SigninRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest defines the request body for profile updates.
type UpdateUserRequest struct {
	Bio            *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	CoverPhoto     *string `json:"cover_photo,omitempty"`
}
