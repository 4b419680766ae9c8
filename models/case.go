package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Sentinel values used when a case is created to anchor a chat only,
// without a filed complaint form behind it.
const (
	ChatCaseDescription = "Chat with Officer"
	ChatCaseLocation    = "N/A"
)

// Case holds the structure for the cases collection in mongo
type Case struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details CaseDetails        `json:"case" bson:"case"`
}

// CaseDetails holds the structure for the inner case structure as
// defined in the cases collection in mongo
type CaseDetails struct {
	UserID       string             `json:"userID" bson:"userID"`
	ReportDate   string             `json:"reportDate" bson:"reportDate"`
	IncidentDate string             `json:"incidentDate" bson:"incidentDate"`
	Description  string             `json:"description" bson:"description"`
	Location     string             `json:"location" bson:"location"`
	CreatedAt    primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt    primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// ComplaintView is a case joined with its resolved status for listing
type ComplaintView struct {
	CaseID       string `json:"caseID"`
	UserID       string `json:"userID"`
	ReportDate   string `json:"reportDate"`
	IncidentDate string `json:"incidentDate"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	Status       string `json:"status"`
}
