package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Valid reports whether g is one of the accepted genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Profile holds the optional, user-editable attributes.
// A nil field means "not set" (or "not provided" when used as a patch or filter).
type Profile struct {
	Name       *string  `json:"name,omitempty" bson:"name,omitempty"`
	Age        *int     `json:"age,omitempty" bson:"age,omitempty"`
	Gender     *Gender  `json:"gender,omitempty" bson:"gender,omitempty"`
	Religion   *string  `json:"religion,omitempty" bson:"religion,omitempty"`
	Location   *string  `json:"location,omitempty" bson:"location,omitempty"`
	Height     *float64 `json:"height,omitempty" bson:"height,omitempty"`
	Education  *string  `json:"education,omitempty" bson:"education,omitempty"`
	Occupation *string  `json:"occupation,omitempty" bson:"occupation,omitempty"`
}

// IsEmpty reports whether no attribute is set.
func (p Profile) IsEmpty() bool {
	return p.Name == nil && p.Age == nil && p.Gender == nil && p.Religion == nil &&
		p.Location == nil && p.Height == nil && p.Education == nil && p.Occupation == nil
}

// Values returns the set attributes keyed by their stored field name.
func (p Profile) Values() map[string]any {
	out := make(map[string]any, 8)
	if p.Name != nil {
		out["name"] = *p.Name
	}
	if p.Age != nil {
		out["age"] = *p.Age
	}
	if p.Gender != nil {
		out["gender"] = string(*p.Gender)
	}
	if p.Religion != nil {
		out["religion"] = *p.Religion
	}
	if p.Location != nil {
		out["location"] = *p.Location
	}
	if p.Height != nil {
		out["height"] = *p.Height
	}
	if p.Education != nil {
		out["education"] = *p.Education
	}
	if p.Occupation != nil {
		out["occupation"] = *p.Occupation
	}
	return out
}

type User struct {
	ID       string `json:"_id"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Profile
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary is the public projection embedded in request listings.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Profile: u.Profile}
}

type UserSummary struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Profile
}

type ConnectionStatus string

const (
	ConnectionNone     ConnectionStatus = "none"
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

// UserWithStatus is a listed user annotated with the caller's view of the relationship.
type UserWithStatus struct {
	User
	ConnectionStatus ConnectionStatus `json:"connectionStatus"`
}

// UserQuery selects users by equality on the set profile attributes.
type UserQuery struct {
	Match        Profile
	ExcludeEmail string
	Skip         int64
	Limit        int64 // 0 means no limit
}

// NewID returns a fresh identifier. Every backend uses ObjectID hex strings
// so ids stay portable between them.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ValidID reports whether id is well formed.
func ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}
