package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// EmergencyAlert holds the structure for the emergencyalerts
// collection in mongo
type EmergencyAlert struct {
	ID      primitive.ObjectID    `json:"_id" bson:"_id"`
	Details EmergencyAlertDetails `json:"alert" bson:"alert"`
}

// EmergencyAlertDetails holds the inner emergency alert structure
type EmergencyAlertDetails struct {
	UserID    string             `json:"userID" bson:"userID"`
	Latitude  float64            `json:"latitude" bson:"latitude"`
	Longitude float64            `json:"longitude" bson:"longitude"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
