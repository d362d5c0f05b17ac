package http

import (
	"net/http"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/http/handler"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	applicationHandler *handler.ApplicationHandler
	reviewHandler      *handler.ReviewHandler
	adminHandler       *handler.AdminHandler
	auditLogHandler    *handler.AuditLogHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	applicationHandler *handler.ApplicationHandler,
	reviewHandler *handler.ReviewHandler,
	adminHandler *handler.AdminHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		applicationHandler: applicationHandler,
		reviewHandler:      reviewHandler,
		adminHandler:       adminHandler,
		auditLogHandler:    auditLogHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.RegisterPhysician).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Physician routes (own application)
	me := api.PathPrefix("/me/application").Subrouter()
	me.Use(r.authMiddleware.Authenticate)
	me.Use(middleware.RequirePhysician)
	me.HandleFunc("", r.applicationHandler.GetMyApplication).Methods(http.MethodGet)
	me.HandleFunc("/readiness", r.applicationHandler.GetMyReadiness).Methods(http.MethodGet)
	me.HandleFunc("/sections/{section}", r.applicationHandler.SaveSection).Methods(http.MethodPut)
	me.HandleFunc("/documents", r.applicationHandler.ListMyDocuments).Methods(http.MethodGet)
	me.HandleFunc("/documents/{kind}", r.applicationHandler.UploadDocument).Methods(http.MethodPost)
	me.HandleFunc("/documents/{kind}", r.applicationHandler.DownloadMyDocument).Methods(http.MethodGet)
	me.HandleFunc("/submit", r.applicationHandler.Submit).Methods(http.MethodPost)
	me.HandleFunc("/reopen", r.applicationHandler.Reopen).Methods(http.MethodPost)

	// Review routes (reviewer or admin)
	review := api.PathPrefix("/review").Subrouter()
	review.Use(r.authMiddleware.Authenticate)
	review.Use(middleware.RequireStaff)
	review.HandleFunc("/applications", r.reviewHandler.ListApplications).Methods(http.MethodGet)
	review.HandleFunc("/queue", r.reviewHandler.Queue).Methods(http.MethodGet)
	review.HandleFunc("/assigned", r.reviewHandler.Assigned).Methods(http.MethodGet)
	review.HandleFunc("/applications/{id}", r.reviewHandler.GetApplication).Methods(http.MethodGet)
	review.HandleFunc("/applications/{id}/components", r.reviewHandler.ListComponents).Methods(http.MethodGet)
	review.HandleFunc("/applications/{id}/documents/{kind}", r.reviewHandler.DownloadDocument).Methods(http.MethodGet)
	review.HandleFunc("/applications/{id}/claim", r.reviewHandler.Claim).Methods(http.MethodPost)
	review.HandleFunc("/applications/{id}/verify", r.reviewHandler.Verify).Methods(http.MethodPost)
	review.HandleFunc("/applications/{id}/reject", r.reviewHandler.Reject).Methods(http.MethodPost)
	review.HandleFunc("/components/{id}/decision", r.reviewHandler.Decide).Methods(http.MethodPost)
	review.HandleFunc("/components/{id}/comments", r.reviewHandler.Comments).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	// Reviewer management
	admin.HandleFunc("/reviewers", r.adminHandler.CreateReviewer).Methods(http.MethodPost)
	admin.HandleFunc("/reviewers/{id}/workload", r.adminHandler.Workload).Methods(http.MethodGet)

	// Assignment
	admin.HandleFunc("/applications/{id}/assign", r.adminHandler.Assign).Methods(http.MethodPost)
	admin.HandleFunc("/applications/{id}/auto-assign", r.adminHandler.AutoAssign).Methods(http.MethodPost)

	// Audit trail
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
