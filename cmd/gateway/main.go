package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	api "github.com/dravet-care/ddand/internal/api/http"
	auth "github.com/dravet-care/ddand/internal/auth/middleware"
	"github.com/dravet-care/ddand/internal/billing"
	"github.com/dravet-care/ddand/internal/config"
	"github.com/dravet-care/ddand/internal/db"
	"github.com/dravet-care/ddand/internal/quiz"
	rbac "github.com/dravet-care/ddand/internal/rbac"
	"github.com/dravet-care/ddand/internal/scoring"
	syncx "github.com/dravet-care/ddand/internal/sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := quiz.NewSQLStore(dbh)
	entitlements := billing.NewSQLStore(dbh)
	events := syncx.NewEventRepo(dbh)

	// --- Population reference table ---
	table, err := scoring.LoadTable(cfg.RefTablePath)
	if err != nil {
		log.Fatalf("reference table: %v", err)
	}

	if err := seedAdmin(ctx, dbh, cfg); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	if err := seedQuestionnaire(ctx, store, cfg.QuizPath); err != nil {
		log.Fatalf("seed questionnaire: %v", err)
	}

	// --- Auth (local JWT for offline/dev) ---
	secret := getenvOr("AUTH_HMAC_SECRET", "supersecret-dev-key")
	authSvc := auth.NewAuthService(secret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))
	}

	// Protected API (JWT → role in context → RBAC).
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, cfg.Mode == config.ModeOffline))

		// Interview flow. Entitlement gating applies to the caregiver-facing
		// questionnaire routes only; clinician and admin roles bypass it.
		pr.Group(func(qr chi.Router) {
			qr.Use(billing.RequireEntitlement(entitlements, cfg.RequireEntitlement))

			qr.With(rbac.Require("quiz:view")).
				Get("/quiz", api.GetQuizHandler(store, cfg.DefaultQuizID))
			qr.With(rbac.Require("quiz:view")).
				Get("/quizzes/{quizID}", api.GetQuizByIDHandler(store))

			qr.With(rbac.Require("attempt:create")).
				Post("/attempts", api.CreateAttemptHandler(store, cfg.DefaultQuizID))
			qr.With(rbac.Require("attempt:save")).
				Post("/attempts/{attemptID}/answers", api.SaveAnswersHandler(store))
			qr.With(rbac.Require("attempt:submit")).
				Post("/attempts/{attemptID}/submit", api.SubmitAttemptHandler(store, events))
		})

		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{attemptID}", api.GetAttemptHandler(store))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(store))

		pr.With(rbac.RequireAny("report:view-own", "report:view-all")).
			Get("/attempts/{attemptID}/report", api.GetReportHandler(store, table))
		pr.With(rbac.RequireAny("report:view-own", "report:view-all")).
			Get("/attempts/{attemptID}/scores", api.GetScoresHandler(store, table))

		pr.With(rbac.Require("analytics:view")).
			Get("/analytics/summary", api.AnalyticsSummaryHandler(store))

		// Users (admin, except listing and self password change).
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))
		pr.With(rbac.Require("users:update_role")).
			Patch("/admin/users/{userID}/role", api.AdminUpdateUserRoleHandler(dbh))

		// Admin surface.
		pr.With(rbac.Require("quiz:upload")).
			Post("/quizzes", api.UploadQuizHandler(store))
		pr.With(rbac.Require("entitlement:manage")).
			Post("/admin/entitlements", api.GrantEntitlementHandler(entitlements, events))
		pr.With(rbac.Require("entitlement:manage")).
			Delete("/admin/entitlements/{userID}", api.RevokeEntitlementHandler(entitlements))
		pr.With(rbac.Require("entitlement:manage")).
			Get("/admin/entitlements", api.ListEntitlementsHandler(entitlements))
		pr.With(rbac.Require("events:view")).
			Get("/admin/events", api.ListEventsHandler(events))
		pr.With(rbac.Require("compliance:manage")).
			Post("/admin/pii/export", api.HandleAdminPIIExport(dbh))
		pr.With(rbac.Require("compliance:manage")).
			Post("/admin/pii/delete", api.HandleAdminPIIDelete(dbh))
		pr.With(rbac.Require("events:view")).
			Get("/admin/audit", api.HandleAdminAuditSearch(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

// seedAdmin ensures the configured admin account exists. A fresh install has
// no way to log in otherwise.
func seedAdmin(ctx context.Context, dbh *sql.DB, cfg config.Config) error {
	if cfg.AdminPassHash == "" {
		return nil
	}
	_, err := dbh.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role) VALUES ($1,$2,$3,'admin')
		 ON CONFLICT (id) DO UPDATE SET username=EXCLUDED.username, password_hash=EXCLUDED.password_hash`,
		"admin", cfg.AdminUser, cfg.AdminPassHash)
	return err
}

// seedQuestionnaire loads the interview definition from a JSON file, if one
// is configured. Without it the questionnaire must be uploaded via the API.
func seedQuestionnaire(ctx context.Context, store quiz.Store, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var q quiz.Questionnaire
	if err := json.Unmarshal(data, &q); err != nil {
		return err
	}
	return store.PutQuestionnaire(ctx, q)
}

func getenvOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
