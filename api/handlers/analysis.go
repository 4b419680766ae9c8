package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/extortion-watch/extortion-report-api/api"
	"github.com/extortion-watch/extortion-report-api/config"
	"github.com/extortion-watch/extortion-report-api/databases"
	"github.com/extortion-watch/extortion-report-api/models"
)

// Analysis exported for testing purposes
type Analysis struct {
	DB  databases.CaseDatabase
	SDB databases.CaseStatusDatabase
}

// legalResources is the curated awareness listing served to clients.
// Static by design of the endpoint, not database backed.
var legalResources = []models.LegalResource{
	{
		Title:       "Filing an Extortion Complaint",
		Description: "Step by step guidance on documenting threats and filing a formal complaint with law enforcement.",
		URL:         "https://www.usa.gov/report-crime",
		ImageURL:    "https://www.usa.gov/assets/report-crime.png",
	},
	{
		Title:       "Know Your Rights Against Blackmail",
		Description: "An overview of the criminal statutes covering extortion, blackmail and coercive threats.",
		URL:         "https://www.law.cornell.edu/wex/extortion",
		ImageURL:    "https://www.law.cornell.edu/assets/extortion.png",
	},
	{
		Title:       "Victim Support Services",
		Description: "Counseling, legal aid and protective resources available to victims of extortion.",
		URL:         "https://ovc.ojp.gov/help-for-victims",
		ImageURL:    "https://ovc.ojp.gov/assets/help.png",
	},
	{
		Title:       "Reporting Online Extortion",
		Description: "How to preserve digital evidence and report sextortion and online blackmail schemes.",
		URL:         "https://www.ic3.gov",
		ImageURL:    "https://www.ic3.gov/assets/ic3.png",
	},
}

// ByLocationHandler aggregates complaint counts per reported location
func (a Analysis) ByLocationHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, ok := api.SessionFromContext(r.Context()); !ok {
		config.ErrorStatus("no session on request", http.StatusUnauthorized, w, fmt.Errorf("missing session"))
		return
	}

	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":         "$case.location",
			"reportCount": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"reportCount": -1}},
	}

	cr, err := a.DB.Aggregate(ctx, pipeline)
	if err != nil {
		config.ErrorStatus("failed to aggregate by location", http.StatusInternalServerError, w, err)
		return
	}

	var rows []models.LocationReportCount
	err = cr.Decode(&rows)
	if err != nil {
		config.ErrorStatus("failed to decode aggregation", http.StatusInternalServerError, w, err)
		return
	}
	if len(rows) == 0 {
		rows = []models.LocationReportCount{}
	}

	b, err := json.Marshal(rows)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ByStatusHandler aggregates complaint counts per status. Cases with
// no status row count toward the default pending bucket, so the rows
// always sum to the total number of cases.
func (a Analysis) ByStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, ok := api.SessionFromContext(r.Context()); !ok {
		config.ErrorStatus("no session on request", http.StatusUnauthorized, w, fmt.Errorf("missing session"))
		return
	}

	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":         "$caseStatus.status",
			"reportCount": bson.M{"$sum": 1},
		}},
	}

	cr, err := a.SDB.Aggregate(ctx, pipeline)
	if err != nil {
		config.ErrorStatus("failed to aggregate by status", http.StatusInternalServerError, w, err)
		return
	}

	var rows []models.StatusReportCount
	err = cr.Decode(&rows)
	if err != nil {
		config.ErrorStatus("failed to decode aggregation", http.StatusInternalServerError, w, err)
		return
	}

	totalCases, err := a.DB.CountDocuments(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to count cases", http.StatusInternalServerError, w, err)
		return
	}

	var withStatus int64
	pendingIdx := -1
	for i, row := range rows {
		withStatus += row.ReportCount
		if row.Status == models.DefaultCaseStatus {
			pendingIdx = i
		}
	}
	if unset := totalCases - withStatus; unset > 0 {
		if pendingIdx >= 0 {
			rows[pendingIdx].ReportCount += unset
		} else {
			rows = append(rows, models.StatusReportCount{Status: models.DefaultCaseStatus, ReportCount: unset})
		}
	}
	if len(rows) == 0 {
		rows = []models.StatusReportCount{}
	}

	b, err := json.Marshal(rows)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// LegalResourcesHandler serves the curated legal awareness listing
func (a Analysis) LegalResourcesHandler(w http.ResponseWriter, r *http.Request) {
	b, err := json.Marshal(legalResources)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
