package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/extortion-watch/extortion-report-api/api"
	"github.com/extortion-watch/extortion-report-api/chat"
	"github.com/extortion-watch/extortion-report-api/config"
	"github.com/extortion-watch/extortion-report-api/databases"
	"github.com/extortion-watch/extortion-report-api/models"
)

// Complaint exported for testing purposes
type Complaint struct {
	DB        databases.CaseDatabase
	SDB       databases.CaseStatusDatabase
	Lifecycle databases.CaseLifecycleDatabase
	Hub       *chat.Hub
}

type submitComplaintRequest struct {
	ReportDate   string `json:"reportDate"`
	IncidentDate string `json:"incidentDate"`
	Description  string `json:"description"`
	Location     string `json:"location"`
}

type createCaseResponse struct {
	CaseID string `json:"caseID"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// SubmitComplaintHandler files a new extortion complaint for the
// authenticated user. The owner is always the session user, never a
// userID from the request body.
func (c Complaint) SubmitComplaintHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sess, ok := api.SessionFromContext(r.Context())
	if !ok {
		config.ErrorStatus("no session on request", http.StatusUnauthorized, w, fmt.Errorf("missing session"))
		return
	}

	var req submitComplaintRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Description == "" || req.Location == "" {
		config.ErrorStatus("description and location are required", http.StatusBadRequest, w, fmt.Errorf("missing required fields"))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	newCase := models.Case{
		ID: primitive.NewObjectID(),
		Details: models.CaseDetails{
			UserID:       sess.UserID,
			ReportDate:   req.ReportDate,
			IncidentDate: req.IncidentDate,
			Description:  req.Description,
			Location:     req.Location,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}

	_, err = c.DB.InsertOne(ctx, newCase)
	if err != nil {
		config.ErrorStatus("failed to create complaint", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Debugw("complaint filed", "caseID", newCase.ID.Hex(), "userID", sess.UserID)

	b, err := json.Marshal(createCaseResponse{CaseID: newCase.ID.Hex()})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateChatCaseHandler opens a case that only anchors a chat with an
// officer. The description and location carry fixed sentinel values
// so these cases are distinguishable from filed complaints.
func (c Complaint) CreateChatCaseHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sess, ok := api.SessionFromContext(r.Context())
	if !ok {
		config.ErrorStatus("no session on request", http.StatusUnauthorized, w, fmt.Errorf("missing session"))
		return
	}

	now := time.Now()
	newCase := models.Case{
		ID: primitive.NewObjectID(),
		Details: models.CaseDetails{
			UserID:      sess.UserID,
			ReportDate:  now.Format("2006-01-02"),
			Description: models.ChatCaseDescription,
			Location:    models.ChatCaseLocation,
			CreatedAt:   primitive.NewDateTimeFromTime(now),
			UpdatedAt:   primitive.NewDateTimeFromTime(now),
		},
	}

	_, err := c.DB.InsertOne(ctx, newCase)
	if err != nil {
		config.ErrorStatus("failed to create chat case", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(createCaseResponse{CaseID: newCase.ID.Hex()})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ListComplaintsHandler lists complaints joined with their current
// status. Citizens see their own complaints only, law enforcement
// sees every complaint. Cases without a status row report the default
// pending status.
func (c Complaint) ListComplaintsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sess, ok := api.SessionFromContext(r.Context())
	if !ok {
		config.ErrorStatus("no session on request", http.StatusUnauthorized, w, fmt.Errorf("missing session"))
		return
	}

	filter := bson.M{}
	if !sess.IsLawEnforcement() {
		filter = bson.M{"case.userID": sess.UserID}
	}

	cases, err := c.DB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to list complaints", http.StatusInternalServerError, w, err)
		return
	}

	views := make([]models.ComplaintView, 0, len(cases))
	for _, crimeCase := range cases {
		view := models.ComplaintView{
			CaseID:       crimeCase.ID.Hex(),
			UserID:       crimeCase.Details.UserID,
			ReportDate:   crimeCase.Details.ReportDate,
			IncidentDate: crimeCase.Details.IncidentDate,
			Description:  crimeCase.Details.Description,
			Location:     crimeCase.Details.Location,
			Status:       models.DefaultCaseStatus,
		}
		status, err := c.SDB.FindOne(ctx, bson.M{"caseStatus.caseID": crimeCase.ID.Hex()})
		if err == nil && status.Details.Status != "" {
			view.Status = status.Details.Status
		}
		views = append(views, view)
	}

	b, err := json.Marshal(views)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteComplaintHandler deletes a case together with its status row
// and chat history. Only the owner may delete, and the whole removal
// is transactional so a failure leaves everything intact.
func (c Complaint) DeleteComplaintHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sess, ok := api.SessionFromContext(r.Context())
	if !ok {
		config.ErrorStatus("no session on request", http.StatusUnauthorized, w, fmt.Errorf("missing session"))
		return
	}

	caseID := mux.Vars(r)["case_id"]
	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	err = c.Lifecycle.DeleteCase(ctx, cID, sess.UserID)
	if err != nil {
		switch {
		// a missing case answers the same as a foreign one, so the
		// endpoint does not reveal whether a case id exists
		case errors.Is(err, databases.ErrCaseNotFound), errors.Is(err, databases.ErrNotCaseOwner):
			config.ErrorStatus("not the owner of this case", http.StatusForbidden, w, err)
		default:
			config.ErrorStatus("failed to delete complaint", http.StatusInternalServerError, w, err)
		}
		return
	}

	if c.Hub != nil {
		c.Hub.Forget(caseID)
	}
	zap.S().Debugw("complaint deleted", "caseID", caseID, "userID", sess.UserID)

	b, err := json.Marshal(models.MessageError{Message: "complaint deleted"})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateStatusHandler sets the single status of a case. Law
// enforcement only. The previous status document is replaced, never
// duplicated.
func (c Complaint) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
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

	caseID := mux.Vars(r)["case_id"]
	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req updateStatusRequest
	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Status == "" {
		config.ErrorStatus("status is required", http.StatusBadRequest, w, fmt.Errorf("missing status"))
		return
	}

	_, err = c.DB.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}

	err = c.SDB.Replace(ctx, caseID, req.Status)
	if err != nil {
		config.ErrorStatus("failed to update status", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(models.MessageError{Message: "status updated"})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
