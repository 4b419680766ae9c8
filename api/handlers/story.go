package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/extortion-watch/extortion-report-api/api"
	"github.com/extortion-watch/extortion-report-api/config"
	"github.com/extortion-watch/extortion-report-api/databases"
	"github.com/extortion-watch/extortion-report-api/models"
)

// SuccessStory exported for testing purposes
type SuccessStory struct {
	DB  databases.SuccessStoryDatabase
	CDB databases.CaseDatabase
}

type createStoryRequest struct {
	Title  string `json:"title"`
	Story  string `json:"story"`
	CaseID string `json:"caseID"`
}

// CreateStoryHandler publishes a success story. Only the citizen who
// owns the referenced case may publish a story about it.
func (s SuccessStory) CreateStoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sess, ok := api.SessionFromContext(r.Context())
	if !ok {
		config.ErrorStatus("no session on request", http.StatusUnauthorized, w, fmt.Errorf("missing session"))
		return
	}
	if err := api.RequireRole(sess, models.UserTypeCitizen); err != nil {
		config.ErrorStatus("citizen access required", http.StatusForbidden, w, err)
		return
	}

	var req createStoryRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Title == "" || req.Story == "" || req.CaseID == "" {
		config.ErrorStatus("title, story and caseID are required", http.StatusBadRequest, w, fmt.Errorf("missing required fields"))
		return
	}

	cID, err := primitive.ObjectIDFromHex(req.CaseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	crimeCase, err := s.CDB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}
	if err := api.RequireOwner(sess, crimeCase.Details.UserID); err != nil {
		config.ErrorStatus("not the owner of this case", http.StatusForbidden, w, err)
		return
	}

	story := models.SuccessStory{
		ID: primitive.NewObjectID(),
		Details: models.SuccessStoryDetails{
			Title:     req.Title,
			Story:     req.Story,
			CaseID:    req.CaseID,
			CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
		},
	}

	_, err = s.DB.InsertOne(ctx, story)
	if err != nil {
		config.ErrorStatus("failed to create story", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(story)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ListStoriesHandler returns published stories newest first. Stories
// are public awareness material, so no session is required.
func (s SuccessStory) ListStoriesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	stories, err := s.DB.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"story.createdAt": -1}))
	if err != nil {
		config.ErrorStatus("failed to list stories", http.StatusInternalServerError, w, err)
		return
	}
	if len(stories) == 0 {
		stories = []models.SuccessStory{}
	}

	b, err := json.Marshal(stories)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
