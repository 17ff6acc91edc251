package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Accounts
	mux.HandleFunc("GET /api/accounts", s.app.AccountHandler.ListAccountsHandler)
	mux.HandleFunc("POST /api/accounts", s.app.AccountHandler.CreateAccountHandler)
	mux.HandleFunc("GET /api/accounts/{id}", s.app.AccountHandler.GetAccountHandler)
	mux.HandleFunc("PUT /api/accounts/{id}", s.app.AccountHandler.UpdateAccountHandler)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.app.AccountHandler.DeleteAccountHandler)

	// API routes - Insight snapshots and research
	mux.HandleFunc("GET /api/accounts/{id}/insights", s.app.InsightHandler.GetInsightsHandler)
	mux.HandleFunc("POST /api/accounts/{id}/insights/regenerate", s.app.InsightHandler.RegenerateInsightsHandler)
	mux.HandleFunc("POST /api/accounts/{id}/research", s.app.ResearchHandler.StreamResearchHandler)

	// API routes - Calls and stored analyses
	mux.HandleFunc("GET /api/accounts/{id}/calls", s.app.CallHandler.ListCallsHandler)
	mux.HandleFunc("POST /api/accounts/{id}/calls", s.app.CallHandler.CreateCallHandler)
	mux.HandleFunc("GET /api/calls/{id}", s.app.CallHandler.GetCallHandler)
	mux.HandleFunc("DELETE /api/calls/{id}", s.app.CallHandler.DeleteCallHandler)
	mux.HandleFunc("GET /api/calls/{id}/analysis", s.app.CallHandler.GetAnalysisHandler)
	mux.HandleFunc("PUT /api/calls/{id}/analysis", s.app.CallHandler.SaveAnalysisHandler)

	// API routes - Stakeholders
	mux.HandleFunc("GET /api/accounts/{id}/stakeholders", s.app.StakeholderHandler.ListStakeholdersHandler)
	mux.HandleFunc("POST /api/accounts/{id}/stakeholders", s.app.StakeholderHandler.CreateStakeholderHandler)
	mux.HandleFunc("PUT /api/stakeholders/{id}", s.app.StakeholderHandler.UpdateStakeholderHandler)
	mux.HandleFunc("DELETE /api/stakeholders/{id}", s.app.StakeholderHandler.DeleteStakeholderHandler)

	// API routes - Email log
	mux.HandleFunc("GET /api/accounts/{id}/emails", s.app.EmailHandler.ListEmailsHandler)
	mux.HandleFunc("POST /api/accounts/{id}/emails", s.app.EmailHandler.CreateEmailHandler)
	mux.HandleFunc("DELETE /api/emails/{id}", s.app.EmailHandler.DeleteEmailHandler)

	// API routes - System
	mux.HandleFunc("GET /api/status", s.app.StatusHandler.StatusHandler)
	mux.HandleFunc("GET /api/version", s.app.StatusHandler.VersionHandler)
	mux.HandleFunc("GET /api/health", s.app.StatusHandler.HealthHandler)

	return mux
}
