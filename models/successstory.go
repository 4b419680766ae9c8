package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// SuccessStory holds the structure for the successstories collection
// in mongo
type SuccessStory struct {
	ID      primitive.ObjectID  `json:"_id" bson:"_id"`
	Details SuccessStoryDetails `json:"story" bson:"story"`
}

// SuccessStoryDetails holds the inner success story structure
type SuccessStoryDetails struct {
	Title     string             `json:"title" bson:"title"`
	Story     string             `json:"story" bson:"story"`
	CaseID    string             `json:"caseID" bson:"caseID"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
