package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues/{leagueID}/transactions", handler.ListTransactionsByLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/waivers/claims", handler.ListClaimsByLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/waivers/priorities", handler.ListWaiverPriorities)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/waivers/windows", handler.ListOpenWaiverWindows)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/leagues/{leagueID}/roster", RequireAuth(verifier, http.HandlerFunc(handler.GetMyRoster)))
	mux.Handle("POST /v1/leagues/{leagueID}/roster/moves", RequireAuth(verifier, http.HandlerFunc(handler.ExecuteRosterMove)))
	mux.Handle("GET /v1/leagues/{leagueID}/roster/failed-attempts", RequireAuth(verifier, http.HandlerFunc(handler.ListFailedAttemptsByLeague)))
	mux.Handle("POST /v1/leagues/{leagueID}/waivers/claims", RequireAuth(verifier, http.HandlerFunc(handler.SubmitWaiverClaim)))
	mux.Handle("DELETE /v1/waivers/claims/{claimID}", RequireAuth(verifier, http.HandlerFunc(handler.CancelWaiverClaim)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/process-waivers", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunProcessWaiversJob)))
	mux.Handle("POST /v1/internal/jobs/waiver-sweep", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunWaiverSweepJob)))
	mux.Handle("POST /v1/internal/jobs/schedule-waivers", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunScheduleWaiversJob)))
}
