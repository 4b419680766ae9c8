package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// DefaultCaseStatus is the status reported for a case that has no
// status row yet.
const DefaultCaseStatus = "Pending"

// CaseStatus holds the structure for the casestatuses collection in
// mongo. At most one status document exists per case; updates replace
// the whole document.
type CaseStatus struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details CaseStatusDetails  `json:"caseStatus" bson:"caseStatus"`
}

// CaseStatusDetails holds the inner case status structure
type CaseStatusDetails struct {
	CaseID    string             `json:"caseID" bson:"caseID"`
	Status    string             `json:"status" bson:"status"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
