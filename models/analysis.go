package models

// LocationReportCount is one row of the complaints-by-location
// aggregation
type LocationReportCount struct {
	Location    string `json:"location" bson:"_id"`
	ReportCount int64  `json:"reportCount" bson:"reportCount"`
}

// StatusReportCount is one row of the complaints-by-status aggregation
type StatusReportCount struct {
	Status      string `json:"status" bson:"_id"`
	ReportCount int64  `json:"reportCount" bson:"reportCount"`
}

// LegalResource is a curated legal awareness entry served from a
// static listing
type LegalResource struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	ImageURL    string `json:"imageUrl"`
}
