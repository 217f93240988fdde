package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-hearing-api/api"
	"github.com/linesmerrill/court-hearing-api/api/arbitration"
	"github.com/linesmerrill/court-hearing-api/api/scheduler"
	"github.com/linesmerrill/court-hearing-api/config"
	"github.com/linesmerrill/court-hearing-api/databases"
	"github.com/linesmerrill/court-hearing-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	DB        databases.CollectionHelper
	Config    config.Config
	Hub       *SessionHub
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	if a.Hub == nil {
		a.Hub = NewSessionHub()
	}
	arb := arbitration.NewHTTPArbitrator(a.Config.ArbitrationURL)

	sdb := databases.NewHearingSessionDatabase(a.dbHelper)
	pdb := databases.NewParticipantDatabase(a.dbHelper)
	tdb := databases.NewTranscriptDatabase(a.dbHelper)
	wdb := databases.NewWorkflowRequestDatabase(a.dbHelper)
	ccdb := databases.NewCourtCaseDatabase(a.dbHelper)

	s := Session{DB: sdb, TDB: tdb, CCDB: ccdb, Hub: a.Hub}
	p := Participant{DB: pdb, SDB: sdb, TDB: tdb, Hub: a.Hub}
	t := Transcript{TDB: tdb, SDB: sdb, PDB: pdb, Hub: a.Hub}
	wf := Workflow{WDB: wdb, SDB: sdb, PDB: pdb, TDB: tdb, CCDB: ccdb, Arb: arb, Hub: a.Hub}
	e := Evidence{WDB: wdb}
	pr := Presence{SDB: sdb, PDB: pdb, Hub: a.Hub}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	// live event stream, auth happens out-of-band on the token exchange
	r.HandleFunc("/ws/session/{session_id}", a.Hub.HandleSessionWebSocket)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/service-token", http.HandlerFunc(m.CreateServiceToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/session", api.Middleware(http.HandlerFunc(s.CreateSessionHandler))).Methods("POST")
	apiCreate.Handle("/session/{session_id}", api.Middleware(http.HandlerFunc(s.GetSessionByIDHandler))).Methods("GET")
	apiCreate.Handle("/session/{session_id}/transition", api.Middleware(http.HandlerFunc(s.TransitionSessionHandler))).Methods("POST")
	apiCreate.Handle("/sessions/case/{case_id}", api.Middleware(http.HandlerFunc(s.GetSessionsByCaseHandler))).Methods("GET")

	apiCreate.Handle("/session/{session_id}/participants", api.Middleware(http.HandlerFunc(p.JoinSessionHandler))).Methods("POST")
	apiCreate.Handle("/session/{session_id}/participants", api.Middleware(http.HandlerFunc(p.GetParticipantsHandler))).Methods("GET")
	apiCreate.Handle("/session/{session_id}/participants/current", api.Middleware(http.HandlerFunc(p.ResolveCurrentHandler))).Methods("GET")
	apiCreate.Handle("/session/{session_id}/participants/{participant_id}/leave", api.Middleware(http.HandlerFunc(p.LeaveSessionHandler))).Methods("POST")

	apiCreate.Handle("/session/{session_id}/transcript", api.Middleware(http.HandlerFunc(t.AppendTranscriptHandler))).Methods("POST")
	apiCreate.Handle("/session/{session_id}/transcript", api.Middleware(http.HandlerFunc(t.GetTranscriptHandler))).Methods("GET")

	apiCreate.Handle("/session/{session_id}/workflow/{kind}", api.Middleware(http.HandlerFunc(wf.OpenWorkflowHandler))).Methods("POST")
	apiCreate.Handle("/session/{session_id}/requests", api.Middleware(http.HandlerFunc(wf.GetWorkflowRequestsHandler))).Methods("GET")
	apiCreate.Handle("/session/{session_id}/requests/{request_id}", api.Middleware(http.HandlerFunc(wf.GetWorkflowRequestByIDHandler))).Methods("GET")
	apiCreate.Handle("/session/{session_id}/requests/{request_id}/resolve", api.Middleware(http.HandlerFunc(wf.ResolveWorkflowHandler))).Methods("POST")
	apiCreate.Handle("/session/{session_id}/requests/{request_id}/arbitrate", api.Middleware(http.HandlerFunc(wf.ArbitrateWorkflowHandler))).Methods("POST")
	apiCreate.Handle("/session/{session_id}/requests/{request_id}/witness-status", api.Middleware(http.HandlerFunc(wf.UpdateWitnessStatusHandler))).Methods("PATCH")

	apiCreate.Handle("/session/{session_id}/requests/{request_id}/extracted-text", api.Middleware(http.HandlerFunc(e.AttachExtractedTextHandler))).Methods("PUT")
	apiCreate.Handle("/session/{session_id}/evidence/admitted", api.Middleware(http.HandlerFunc(e.GetAdmittedEvidenceHandler))).Methods("GET")
	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(e.GenerateSignature))).Methods("POST")

	apiCreate.Handle("/session/{session_id}/reactions", api.Middleware(http.HandlerFunc(pr.PostReactionHandler))).Methods("POST")
	apiCreate.Handle("/session/{session_id}/reactions", api.Middleware(http.HandlerFunc(pr.GetReactionsHandler))).Methods("GET")

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
	zap.S().Info("court-hearing-api has connected to the database")

	// background jobs: adjournment sweeps and hearing reminders
	a.Scheduler = scheduler.NewScheduler(
		databases.NewHearingSessionDatabase(a.dbHelper),
		databases.NewWorkflowRequestDatabase(a.dbHelper),
		databases.NewTranscriptDatabase(a.dbHelper),
		databases.NewParticipantDatabase(a.dbHelper),
		databases.NewUserDatabase(a.dbHelper),
		databases.NewSchedulerLockDatabase(a.dbHelper),
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
