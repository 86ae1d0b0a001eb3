// Package api wires the HTTP and websocket transports of the chat service.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-chat/internal/api/handlers"
	"github.com/dvloznov/finance-chat/internal/api/middleware"
	"github.com/dvloznov/finance-chat/internal/babilonia"
	"github.com/dvloznov/finance-chat/internal/chat"
	"github.com/dvloznov/finance-chat/internal/jobs"
	"github.com/dvloznov/finance-chat/internal/reports"
	"github.com/dvloznov/finance-chat/internal/session"
)

// Deps are the collaborators shared by every handler. Publisher, Jobs and
// Reports may be nil.
type Deps struct {
	Sessions  *session.Manager
	Profiles  *babilonia.Store
	Engine    *chat.Engine
	Publisher jobs.Publisher
	Jobs      jobs.JobStore
	Reports   reports.Publisher
	Log       zerolog.Logger
}

// NewRouter builds the full route table.
func NewRouter(d Deps) http.Handler {
	sessionsHandler := handlers.NewSessionsHandler(d.Sessions, d.Profiles, d.Log)
	chatHandler := handlers.NewChatHandler(d.Sessions, d.Engine, d.Publisher, d.Log)
	ledgerHandler := handlers.NewLedgerHandler(d.Sessions, d.Log)
	dashboardHandler := handlers.NewDashboardHandler(d.Sessions, d.Reports, d.Log)
	babiloniaHandler := handlers.NewBabiloniaHandler(d.Sessions, d.Profiles, d.Log)
	socket := handlers.NewChatSocket(d.Sessions, d.Engine, d.Log)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Log))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/ws", socket)

	r.Route("/api", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionsHandler.CreateSession)
			r.Get("/", sessionsHandler.ListSessions)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionsHandler.GetSession)
				r.Delete("/", sessionsHandler.DeleteSession)

				r.Get("/messages", sessionsHandler.ListMessages)
				r.Post("/messages", chatHandler.PostMessage)
				r.Post("/actions", chatHandler.PostAction)

				r.Get("/transactions", ledgerHandler.ListTransactions)
				r.Post("/transactions", ledgerHandler.CreateTransaction)
				r.Patch("/transactions/{txID}", ledgerHandler.UpdateTransaction)
				r.Delete("/transactions/{txID}", ledgerHandler.DeleteTransaction)

				r.Get("/goals", ledgerHandler.ListGoals)
				r.Post("/goals", ledgerHandler.CreateGoal)
				r.Patch("/goals/{goalID}", ledgerHandler.UpdateGoal)
				r.Delete("/goals/{goalID}", ledgerHandler.DeleteGoal)

				r.Get("/agenda", ledgerHandler.ListAgenda)
				r.Post("/agenda", ledgerHandler.CreateAgendaItem)
				r.Delete("/agenda/{itemID}", ledgerHandler.DeleteAgendaItem)

				r.Get("/dashboard", dashboardHandler.GetDashboard)
				r.Post("/month-close/export", dashboardHandler.ExportMonthClose)

				r.Get("/babilonia", babiloniaHandler.GetProfile)
				r.Patch("/babilonia", babiloniaHandler.UpdateProfile)
				r.Post("/babilonia/expenses", babiloniaHandler.AddExpense)
				r.Delete("/babilonia/expenses/{expenseID}", babiloniaHandler.RemoveExpense)
			})
		})

		if d.Jobs != nil {
			jobsHandler := handlers.NewJobsHandler(d.Jobs, d.Log)
			r.Get("/jobs", jobsHandler.ListJobs)
			r.Get("/jobs/{id}", jobsHandler.GetJob)
		}
	})

	return r
}
