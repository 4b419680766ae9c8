package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/extortion-watch/extortion-report-api/api"
	"github.com/extortion-watch/extortion-report-api/api/scheduler"
	"github.com/extortion-watch/extortion-report-api/chat"
	"github.com/extortion-watch/extortion-report-api/config"
	"github.com/extortion-watch/extortion-report-api/databases"
	"github.com/extortion-watch/extortion-report-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Auth      *api.Auth
	Hub       *chat.Hub
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()

	u := User{Auth: a.Auth, DB: databases.NewUserDatabase(a.dbHelper)}
	c := Complaint{
		DB:        databases.NewCaseDatabase(a.dbHelper),
		SDB:       databases.NewCaseStatusDatabase(a.dbHelper),
		Lifecycle: databases.NewCaseLifecycleDatabase(a.dbHelper),
		Hub:       a.Hub,
	}
	alert := EmergencyAlert{DB: databases.NewEmergencyAlertDatabase(a.dbHelper)}
	story := SuccessStory{DB: databases.NewSuccessStoryDatabase(a.dbHelper), CDB: c.DB}
	analysis := Analysis{DB: c.DB, SDB: c.SDB}
	ws := ChatGateway{Auth: a.Auth, Hub: a.Hub}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	// registered outside the timeout-bounded subrouter, chat
	// connections stay open for the life of the session
	r.Handle("/api/v1/ws/chat", http.HandlerFunc(ws.ServeHandler)).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/token", http.HandlerFunc(u.LoginHandler)).Methods("POST")
	apiCreate.Handle("/auth/logout", a.Auth.Middleware(http.HandlerFunc(a.Auth.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.CreateUserHandler)).Methods("POST")
	apiCreate.Handle("/user/profile", a.Auth.Middleware(http.HandlerFunc(u.ProfileHandler))).Methods("GET")

	apiCreate.Handle("/complaint", a.Auth.Middleware(http.HandlerFunc(c.SubmitComplaintHandler))).Methods("POST")
	apiCreate.Handle("/complaint/chat", a.Auth.Middleware(http.HandlerFunc(c.CreateChatCaseHandler))).Methods("POST")
	apiCreate.Handle("/complaints", a.Auth.Middleware(http.HandlerFunc(c.ListComplaintsHandler))).Methods("GET")
	apiCreate.Handle("/complaint/{case_id}", a.Auth.Middleware(http.HandlerFunc(c.DeleteComplaintHandler))).Methods("DELETE")
	apiCreate.Handle("/complaint/{case_id}/status", a.Auth.Middleware(http.HandlerFunc(c.UpdateStatusHandler))).Methods("PUT")

	apiCreate.Handle("/emergency-alert", a.Auth.Middleware(http.HandlerFunc(alert.CreateAlertHandler))).Methods("POST")
	apiCreate.Handle("/emergency-alerts", a.Auth.Middleware(http.HandlerFunc(alert.ListAlertsHandler))).Methods("GET")

	apiCreate.Handle("/success-story", a.Auth.Middleware(http.HandlerFunc(story.CreateStoryHandler))).Methods("POST")
	apiCreate.Handle("/success-stories", http.HandlerFunc(story.ListStoriesHandler)).Methods("GET")

	apiCreate.Handle("/report-analysis/location", a.Auth.Middleware(http.HandlerFunc(analysis.ByLocationHandler))).Methods("GET")
	apiCreate.Handle("/report-analysis/status", a.Auth.Middleware(http.HandlerFunc(analysis.ByStatusHandler))).Methods("GET")
	apiCreate.Handle("/legal-resources", http.HandlerFunc(analysis.LegalResourcesHandler)).Methods("GET")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("extortion-report-api has connected to the database")

	a.Auth = api.NewAuth(databases.NewUserDatabase(a.dbHelper))
	a.Hub = chat.NewHub(chat.NewLog(
		databases.NewChatMessageDatabase(a.dbHelper),
		databases.NewCaseDatabase(a.dbHelper),
	))

	a.Scheduler = scheduler.New(
		databases.NewEmergencyAlertDatabase(a.dbHelper),
		time.Duration(a.Config.AlertRetentionDays)*24*time.Hour,
	)
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
