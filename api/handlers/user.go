package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/extortion-watch/extortion-report-api/api"
	"github.com/extortion-watch/extortion-report-api/config"
	"github.com/extortion-watch/extortion-report-api/databases"
	"github.com/extortion-watch/extortion-report-api/models"
)

// User exported for testing purposes
type User struct {
	Auth *api.Auth
	DB   databases.UserDatabase
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	UserType string `json:"userType"`
}

// CreateUserHandler registers a new account. The email is unique
// across the directory, so a duplicate registration is rejected with
// a conflict rather than overwriting the existing account.
func (u User) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var req createUserRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		config.ErrorStatus("name, email and password are required", http.StatusBadRequest, w, fmt.Errorf("missing required fields"))
		return
	}
	if req.UserType != models.UserTypeLawEnforcement {
		req.UserType = models.UserTypeCitizen
	}

	count, err := u.DB.CountDocuments(ctx, bson.M{"user.email": req.Email})
	if err != nil {
		config.ErrorStatus("failed to check for existing user", http.StatusInternalServerError, w, err)
		return
	}
	if count > 0 {
		config.ErrorStatus("email is already registered", http.StatusConflict, w, fmt.Errorf("duplicate email"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	res, err := u.DB.InsertOne(ctx, models.UserDetails{
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hash),
		UserType:  req.UserType,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	})
	if err != nil {
		config.ErrorStatus("failed to create user", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Debugw("user created", "email", req.Email)

	b, err := json.Marshal(models.MessageError{Message: fmt.Sprintf("user created: %v", res.Decode())})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// LoginHandler exchanges credentials for an opaque session token. The
// credential check runs through the basic strategy; protected routes
// only ever see the minted token.
func (u User) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	sess, err := u.Auth.AuthenticateCredentials(r, req.Email, req.Password)
	if err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, err)
		return
	}

	token := u.Auth.IssueToken(r, sess)

	b, err := json.Marshal(loginResponse{
		Token:    token,
		UserID:   sess.UserID,
		Name:     sess.Name,
		UserType: sess.UserType,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ProfileHandler returns the account behind the current session
func (u User) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sess, ok := api.SessionFromContext(r.Context())
	if !ok {
		config.ErrorStatus("no session on request", http.StatusUnauthorized, w, fmt.Errorf("missing session"))
		return
	}

	uID, err := primitive.ObjectIDFromHex(sess.UserID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	user, err := u.DB.FindOne(ctx, bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}
	user.Details.Password = ""

	b, err := json.Marshal(user)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
