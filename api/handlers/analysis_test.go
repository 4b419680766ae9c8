package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/extortion-watch/extortion-report-api/api/handlers"
	"github.com/extortion-watch/extortion-report-api/databases"
	"github.com/extortion-watch/extortion-report-api/databases/mocks"
	"github.com/extortion-watch/extortion-report-api/models"
)

func TestAnalysis_ByLocationHandlerNoSession(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/report-analysis/location", nil)
	if err != nil {
		t.Fatal(err)
	}

	a := handlers.Analysis{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.ByLocationHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAnalysis_ByLocationHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/report-analysis/location", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = withSession(req, officerSession)

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursor := &mocks.CursorHelper{}

	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.LocationReportCount)
		*arg = []models.LocationReportCount{
			{Location: "Riverside Market", ReportCount: 7},
			{Location: "Harbor District", ReportCount: 3},
		}
	})
	conn.On("Aggregate", mock.Anything, mock.Anything).Return(cursor, nil)
	db.On("Collection", "cases").Return(conn)

	a := handlers.Analysis{DB: databases.NewCaseDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.ByLocationHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var rows []models.LocationReportCount
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rows))
	assert.Len(t, rows, 2)
	assert.Equal(t, "Riverside Market", rows[0].Location)
	assert.Equal(t, int64(7), rows[0].ReportCount)
}

func TestAnalysis_ByStatusHandlerBackfillsPending(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/report-analysis/status", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = withSession(req, officerSession)

	db := &MockDatabaseHelper{}
	statusConn := &mocks.CollectionHelper{}
	casesConn := &mocks.CollectionHelper{}
	cursor := &mocks.CursorHelper{}

	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.StatusReportCount)
		*arg = []models.StatusReportCount{
			{Status: "Under Investigation", ReportCount: 2},
			{Status: "Resolved", ReportCount: 1},
		}
	})
	statusConn.On("Aggregate", mock.Anything, mock.Anything).Return(cursor, nil)
	casesConn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(5), nil)
	db.On("Collection", "casestatuses").Return(statusConn)
	db.On("Collection", "cases").Return(casesConn)

	a := handlers.Analysis{DB: databases.NewCaseDatabase(db), SDB: databases.NewCaseStatusDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.ByStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var rows []models.StatusReportCount
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rows))
	assert.Len(t, rows, 3)

	counts := map[string]int64{}
	for _, row := range rows {
		counts[row.Status] = row.ReportCount
	}
	// two cases have no status row, they count as pending
	assert.Equal(t, int64(2), counts[models.DefaultCaseStatus])
	assert.Equal(t, int64(2), counts["Under Investigation"])
	assert.Equal(t, int64(1), counts["Resolved"])
}

func TestAnalysis_ByStatusHandlerMergesExistingPendingBucket(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/report-analysis/status", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = withSession(req, officerSession)

	db := &MockDatabaseHelper{}
	statusConn := &mocks.CollectionHelper{}
	casesConn := &mocks.CollectionHelper{}
	cursor := &mocks.CursorHelper{}

	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.StatusReportCount)
		*arg = []models.StatusReportCount{
			{Status: models.DefaultCaseStatus, ReportCount: 1},
		}
	})
	statusConn.On("Aggregate", mock.Anything, mock.Anything).Return(cursor, nil)
	casesConn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(4), nil)
	db.On("Collection", "casestatuses").Return(statusConn)
	db.On("Collection", "cases").Return(casesConn)

	a := handlers.Analysis{DB: databases.NewCaseDatabase(db), SDB: databases.NewCaseStatusDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.ByStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var rows []models.StatusReportCount
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rows))
	assert.Len(t, rows, 1)
	assert.Equal(t, models.DefaultCaseStatus, rows[0].Status)
	assert.Equal(t, int64(4), rows[0].ReportCount)
}

func TestAnalysis_LegalResourcesHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/legal-resources", nil)
	if err != nil {
		t.Fatal(err)
	}

	a := handlers.Analysis{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.LegalResourcesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resources []models.LegalResource
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resources))
	assert.NotEmpty(t, resources)
	for _, res := range resources {
		assert.NotEmpty(t, res.Title)
		assert.NotEmpty(t, res.URL)
	}
}
