package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"perfumery/internal/access"
	"perfumery/internal/handlers"
	applog "perfumery/internal/log"
	"perfumery/internal/metrics"
)

type routerOptions struct {
	// metricsPath mounts the Prometheus endpoint when non-empty.
	metricsPath string
	staticDir   string
}

func newRouter(opts routerOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(observe)
	r.Use(middleware.Recoverer)

	applog.Debug(context.Background(), "registering http routes")

	r.Get("/healthz", handlers.Health)
	r.HandleFunc("/login", handlers.Login)
	r.HandleFunc("/logout", handlers.Logout)
	if opts.metricsPath != "" {
		r.Handle(opts.metricsPath, metrics.Handler())
		applog.Debug(context.Background(), "route registered", "path", opts.metricsPath)
	}

	gate := handlers.RequireOperation

	r.With(gate(access.ViewDashboard)).Get("/dashboard", handlers.Dashboard)

	r.Route("/formulations", func(r chi.Router) {
		r.With(gate(access.ViewFormulations)).Get("/", handlers.Formulations)
		r.With(gate(access.CreateFormulation)).HandleFunc("/new", handlers.NewFormulation)
		r.With(gate(access.ViewFormulations)).Get("/{id}", handlers.ShowFormulation)
		r.With(gate(access.EditFormulation)).HandleFunc("/{id}/edit", handlers.EditFormulation)
		r.With(gate(access.SubmitFormulation)).Post("/{id}/submit-qa", handlers.SubmitFormulation)
		r.With(gate(access.DeleteFormulation)).Post("/{id}/delete", handlers.DeleteFormulation)
	})

	r.Route("/inventory", func(r chi.Router) {
		r.With(gate(access.ViewInventory)).Get("/", handlers.Inventory)
		r.With(gate(access.ManageIngredients)).HandleFunc("/new", handlers.NewIngredient)
		r.With(gate(access.ManageIngredients)).HandleFunc("/{id}/edit", handlers.EditIngredient)
		r.With(gate(access.AdjustStock)).Post("/{id}/update", handlers.UpdateStock)
		r.With(gate(access.ManageIngredients)).Post("/{id}/delete", handlers.DeleteIngredient)
	})
	r.With(gate(access.ViewInventorySummary)).Get("/inventory-summary", handlers.InventorySummary)

	r.Route("/compliance", func(r chi.Router) {
		r.With(gate(access.ViewCompliance)).Get("/", handlers.Compliance)
		r.With(gate(access.ViewCompliance)).Get("/{id}/fix", handlers.ShowIssue)
		r.With(gate(access.ResolveComplianceIssue)).Post("/{id}/fix", handlers.FixIssue)
		r.With(gate(access.ManageComplianceRules)).HandleFunc("/rules", handlers.ComplianceRules)
		r.With(gate(access.ManageComplianceRules)).Post("/rules/{id}/delete", handlers.DeleteRule)
	})

	r.With(gate(access.ViewQADashboard)).Get("/qa-dashboard", handlers.QADashboard)
	r.Route("/qa", func(r chi.Router) {
		r.Use(gate(access.DecideQA))
		r.Post("/{id}/approve", handlers.ApproveFormulation)
		r.Post("/{id}/reject", handlers.RejectFormulation)
		r.HandleFunc("/test-result/{id}", handlers.QATestResult)
	})

	r.With(gate(access.ViewReports)).Get("/reports", handlers.Reports)
	r.Route("/reports/download", func(r chi.Router) {
		r.Use(gate(access.ExportReports))
		r.Get("/formulations", handlers.DownloadFormulations)
		r.Get("/formulations.xlsx", handlers.DownloadFormulationsXLSX)
		r.Get("/ingredients", handlers.DownloadIngredients)
		r.Get("/ingredients.xlsx", handlers.DownloadIngredientsXLSX)
	})
	r.With(gate(access.ViewReports)).Get("/api/charts", handlers.Charts)

	if opts.staticDir != "" {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(opts.staticDir))))
		applog.Debug(context.Background(), "route registered", "path", "/assets/", "static", true)
	}

	r.Get("/", handlers.Home)
	r.NotFound(handlers.Home)

	applog.Debug(context.Background(), "http routes registered")
	return r
}
