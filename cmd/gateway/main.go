package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	api "github.com/lingopath/lingopath/internal/api/http"
	auth "github.com/lingopath/lingopath/internal/auth/middleware"
	"github.com/lingopath/lingopath/internal/config"
	"github.com/lingopath/lingopath/internal/db"
	"github.com/lingopath/lingopath/internal/event"
	"github.com/lingopath/lingopath/internal/exercise"
	"github.com/lingopath/lingopath/internal/lesson"
	"github.com/lingopath/lingopath/internal/notify"
	"github.com/lingopath/lingopath/internal/progression"
	rbac "github.com/lingopath/lingopath/internal/rbac"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
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

	// Bootstrap admin so a fresh deployment is reachable before any user
	// import. Skipped when no hash is configured.
	if cfg.AdminPassHash != "" {
		if err := seedAdmin(ctx, dbh, cfg.AdminUser, cfg.AdminPassHash); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
	}

	lessons := lesson.NewSQLStore(dbh)
	progress := progression.NewSQLStore(dbh)
	dispatcher := notify.NewSQLDispatcher(dbh)
	registry := exercise.NewRegistry()

	advancer := progression.NewAdvancer(progress, progress, dispatcher, lessons)
	advancer.Events = event.NewRepo(dbh)

	// Reclaim sessions abandoned mid-lesson; an hour idle means the learner
	// is not coming back to this attempt.
	go func() {
		for range time.Tick(10 * time.Minute) {
			if n := registry.Sweep(time.Hour); n > 0 {
				log.Printf("evicted %d abandoned sessions", n)
			}
		}
	}()

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

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

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, cfg.Mode == config.ModeOffline))

		// Curriculum
		pr.With(rbac.Require("lesson:create")).
			Post("/lessons", api.UploadLessonHandler(lessons))
		pr.With(rbac.Require("lesson:view")).
			Get("/lessons", api.ListLessonsHandler(lessons))
		pr.With(rbac.Require("lesson:view")).
			Get("/lessons/{lessonID}", api.GetLessonHandler(lessons))

		// Exercise flow
		pr.With(rbac.Require("session:start")).
			Post("/sessions", api.StartSessionHandler(registry, lessons))
		pr.With(rbac.Require("session:answer")).
			Get("/sessions/{sessionID}", api.GetSessionHandler(registry))
		pr.With(rbac.Require("session:answer")).
			Post("/sessions/{sessionID}/answers", api.SubmitAnswerHandler(registry))
		pr.With(rbac.Require("session:answer")).
			Post("/sessions/{sessionID}/advance", api.AdvanceSessionHandler(registry))
		pr.With(rbac.Require("session:complete")).
			Post("/sessions/{sessionID}/complete", api.CompleteSessionHandler(registry, advancer))

		// Progress & inbox
		pr.With(rbac.RequireAny("progress:view-own", "progress:view-all")).
			Get("/me/progress", api.MyProgressHandler(progress, progress))
		pr.With(rbac.Require("lesson:view")).
			Get("/ranks", api.ListRanksHandler())
		pr.With(rbac.Require("notifications:view-own")).
			Get("/me/notifications", api.MyNotificationsHandler(dispatcher))

		// Users (author/admin)
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

func seedAdmin(ctx context.Context, dbh *sql.DB, username, passHash string) error {
	_, err := dbh.ExecContext(ctx,
		`INSERT INTO users (id, username, role, pass_hash, created_at)
		 VALUES ($1,$2,'admin',$3,$4)
		 ON CONFLICT (username) DO UPDATE SET role='admin', pass_hash=EXCLUDED.pass_hash`,
		uuid.NewString(), username, passHash, time.Now().Unix())
	return err
}
