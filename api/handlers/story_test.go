package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/extortion-watch/extortion-report-api/api/handlers"
	"github.com/extortion-watch/extortion-report-api/databases"
	"github.com/extortion-watch/extortion-report-api/databases/mocks"
	"github.com/extortion-watch/extortion-report-api/models"
)

func TestSuccessStory_CreateStoryHandlerOfficerForbidden(t *testing.T) {
	body, _ := json.Marshal(map[string]string{
		"title":  "Case closed",
		"story":  "We got our money back.",
		"caseID": primitive.NewObjectID().Hex(),
	})
	req, err := http.NewRequest("POST", "/api/v1/success-story", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = withSession(req, officerSession)

	s := handlers.SuccessStory{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.CreateStoryHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestSuccessStory_CreateStoryHandlerNotOwner(t *testing.T) {
	caseID := primitive.NewObjectID()
	body, _ := json.Marshal(map[string]string{
		"title":  "Case closed",
		"story":  "We got our money back.",
		"caseID": caseID.Hex(),
	})
	req, err := http.NewRequest("POST", "/api/v1/success-story", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = withSession(req, citizenSession)

	db := &MockDatabaseHelper{}
	casesConn := &mocks.CollectionHelper{}
	singleResult := &mocks.SingleResultHelper{}

	singleResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Case)
		(*arg).ID = caseID
		(*arg).Details.UserID = "someone-else"
	})
	casesConn.On("FindOne", mock.Anything, mock.Anything).Return(singleResult)
	db.On("Collection", "cases").Return(casesConn)

	s := handlers.SuccessStory{CDB: databases.NewCaseDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.CreateStoryHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestSuccessStory_CreateStoryHandlerSuccess(t *testing.T) {
	caseID := primitive.NewObjectID()
	body, _ := json.Marshal(map[string]string{
		"title":  "Case closed",
		"story":  "The officers traced the caller and the demands stopped.",
		"caseID": caseID.Hex(),
	})
	req, err := http.NewRequest("POST", "/api/v1/success-story", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = withSession(req, citizenSession)

	db := &MockDatabaseHelper{}
	casesConn := &mocks.CollectionHelper{}
	storiesConn := &mocks.CollectionHelper{}
	singleResult := &mocks.SingleResultHelper{}
	insertResult := &mocks.InsertOneResultHelper{}

	singleResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Case)
		(*arg).ID = caseID
		(*arg).Details.UserID = citizenSession.UserID
	})
	casesConn.On("FindOne", mock.Anything, mock.Anything).Return(singleResult)

	var inserted models.SuccessStory
	storiesConn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).(models.SuccessStory)
		})
	db.On("Collection", "cases").Return(casesConn)
	db.On("Collection", "successstories").Return(storiesConn)

	s := handlers.SuccessStory{DB: databases.NewSuccessStoryDatabase(db), CDB: databases.NewCaseDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.CreateStoryHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Case closed", inserted.Details.Title)
	assert.Equal(t, caseID.Hex(), inserted.Details.CaseID)
}

func TestSuccessStory_ListStoriesHandlerEmpty(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/success-stories", nil)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursor := &mocks.CursorHelper{}

	cursor.On("Decode", mock.Anything).Return(nil)
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursor, nil)
	db.On("Collection", "successstories").Return(conn)

	s := handlers.SuccessStory{DB: databases.NewSuccessStoryDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.ListStoriesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}
