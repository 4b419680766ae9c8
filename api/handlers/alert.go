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

// EmergencyAlert exported for testing purposes
type EmergencyAlert struct {
	DB databases.EmergencyAlertDatabase
}

type createAlertRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CreateAlertHandler records a panic alert with the sender's location
func (a EmergencyAlert) CreateAlertHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sess, ok := api.SessionFromContext(r.Context())
	if !ok {
		config.ErrorStatus("no session on request", http.StatusUnauthorized, w, fmt.Errorf("missing session"))
		return
	}

	var req createAlertRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	alert := models.EmergencyAlert{
		ID: primitive.NewObjectID(),
		Details: models.EmergencyAlertDetails{
			UserID:    sess.UserID,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
		},
	}

	_, err = a.DB.InsertOne(ctx, alert)
	if err != nil {
		config.ErrorStatus("failed to create alert", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(alert)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ListAlertsHandler returns alerts newest first, for the law
// enforcement dashboard
func (a EmergencyAlert) ListAlertsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sess, ok := api.SessionFromContext(r.Context())
	if !ok {
		config.ErrorStatus("no session on request", http.StatusUnauthorized, w, fmt.Errorf("missing session"))
		return
	}
	if err := api.RequireRole(sess, models.UserTypeLawEnforcement); err != nil {
		config.ErrorStatus("law enforcement access required", http.StatusForbidden, w, err)
		return
	}

	alerts, err := a.DB.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"alert.createdAt": -1}))
	if err != nil {
		config.ErrorStatus("failed to list alerts", http.StatusInternalServerError, w, err)
		return
	}
	if len(alerts) == 0 {
		alerts = []models.EmergencyAlert{}
	}

	b, err := json.Marshal(alerts)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
