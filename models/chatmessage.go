package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Sender types stored on chat messages
const (
	SenderTypeCitizen = "citizen"
	SenderTypeOfficer = "officer"
)

// ChatMessage holds the structure for the chatmessages collection in
// mongo. Messages are append-only; Seq is monotonic per case and
// defines the history order.
type ChatMessage struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details ChatMessageDetails `json:"chatMessage" bson:"chatMessage"`
}

// ChatMessageDetails holds the inner chat message structure
type ChatMessageDetails struct {
	CaseID     string             `json:"caseID" bson:"caseID"`
	SenderType string             `json:"senderType" bson:"senderType"`
	Message    string             `json:"message" bson:"message"`
	Seq        int64              `json:"seq" bson:"seq"`
	CreatedAt  primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
