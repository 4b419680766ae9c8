package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User types recognized by the system
const (
	UserTypeCitizen        = "citizen"
	UserTypeLawEnforcement = "law_enforcement"
)

// User holds the structure for the users collection in mongo
type User struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details UserDetails        `json:"user" bson:"user"`
}

// UserDetails holds the structure for the inner user structure as
// defined in the users collection in mongo
type UserDetails struct {
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"password,omitempty" bson:"password"`
	UserType  string             `json:"userType" bson:"userType"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
