package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/schoolyard-api/internal/application/access"
	"github.com/schoolyard-api/internal/application/auth"
	"github.com/schoolyard-api/internal/application/event"
	"github.com/schoolyard-api/internal/application/notification"
	"github.com/schoolyard-api/internal/application/post"
	"github.com/schoolyard-api/internal/application/rating"
	"github.com/schoolyard-api/internal/application/schedule"
	"github.com/schoolyard-api/internal/application/session"
	"github.com/schoolyard-api/internal/application/source"
	"github.com/schoolyard-api/internal/application/teacherdir"
	"github.com/schoolyard-api/internal/application/user"
	"github.com/schoolyard-api/internal/config"
	"github.com/schoolyard-api/internal/domain"
	"github.com/schoolyard-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/schoolyard-api/internal/infrastructure/jwt"
	s3infra "github.com/schoolyard-api/internal/infrastructure/s3"
	"github.com/schoolyard-api/internal/infrastructure/smtp"
	"github.com/schoolyard-api/internal/infrastructure/sns"
	"github.com/schoolyard-api/internal/transport/http/handler"
	appmiddleware "github.com/schoolyard-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	SessionRepo      *dynamo.SessionRepo
	ScopeRepo        *dynamo.ScopeRepo
	KeyRepo          *dynamo.KeyRepo
	PostRepo         *dynamo.PostRepo
	CommentRepo      *dynamo.CommentRepo
	EventRepo        *dynamo.EventRepo
	RSVPRepo         *dynamo.RSVPRepo
	TeacherRepo      *dynamo.TeacherRepo
	ReviewRepo       *dynamo.ReviewRepo
	SlotRepo         *dynamo.SlotRepo
	SourceRepo       *dynamo.SourceRepo
	RatingRepo       *dynamo.RatingRepo
	NotificationRepo *dynamo.NotificationRepo
	VerificationRepo *dynamo.VerificationRepo
	S3Store          *s3infra.Store
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender
	JWTProvider      *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true, // session cookie
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	notifSvc := notification.NewService(deps.NotificationRepo)
	accessSvc := access.NewService(deps.ScopeRepo, deps.KeyRepo)
	sessionSvc := session.NewService(deps.SessionRepo, deps.UserRepo, deps.JWTProvider, cfg.RefreshTokenDur)
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:        deps.UserRepo,
		SessionRepo:     deps.SessionRepo,
		KeyRepo:         deps.KeyRepo,
		JWTProvider:     deps.JWTProvider,
		RefreshTokenDur: cfg.RefreshTokenDur,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		VerificationRepo: deps.VerificationRepo,
		UserRepo:         deps.UserRepo,
		SessionRepo:      deps.SessionRepo,
		JWTProvider:      deps.JWTProvider,
		Mailer:           deps.Mailer,
		SMSSender:        deps.SMSSender,
		RefreshTokenDur:  cfg.RefreshTokenDur,
	})
	postSvc := post.NewService(post.ServiceDeps{
		PostRepo:    deps.PostRepo,
		CommentRepo: deps.CommentRepo,
		UserRepo:    deps.UserRepo,
		Access:      accessSvc,
		Notifier:    notifSvc,
	})
	eventSvc := event.NewService(deps.EventRepo, deps.RSVPRepo, accessSvc)
	teacherSvc := teacherdir.NewService(teacherdir.ServiceDeps{
		TeacherRepo: deps.TeacherRepo,
		ReviewRepo:  deps.ReviewRepo,
		PostRepo:    deps.PostRepo,
		Notifier:    notifSvc,
	})
	scheduleSvc := schedule.NewService(deps.SlotRepo, accessSvc)
	ratingSvc := rating.NewService(deps.RatingRepo, deps.UserRepo, notifSvc)
	sourceSvc := source.NewService(deps.SourceRepo, deps.S3Store, accessSvc)

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(sessionSvc, cfg.JWTExpiry)
	userH := handler.NewUserHandler(userSvc, cfg.JWTExpiry)
	scopeH := handler.NewScopeHandler(accessSvc)
	postH := handler.NewPostHandler(postSvc)
	eventH := handler.NewEventHandler(eventSvc)
	teacherH := handler.NewTeacherHandler(teacherSvc)
	scheduleH := handler.NewScheduleHandler(scheduleSvc)
	sourceH := handler.NewSourceHandler(sourceSvc)
	ratingH := handler.NewRatingHandler(ratingSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	pwH := handler.NewPasswordRecoveryHandler(authSvc)
	emailH := handler.NewEmailConfirmHandler(authSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)
		r.With(sensitiveRL.Limit).Post("/password-recovery/{action}", pwH.Action)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			// Any authenticated user
			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)
			r.Post("/users/change-password", userH.ChangePassword)
			r.Get("/users/{id}/ratings", ratingH.List)
			r.Post("/users/{id}/ratings", ratingH.Rate)

			r.Get("/scopes", scopeH.List)
			r.Get("/scopes/my-keys", scopeH.MyKeys)
			r.Get("/scopes/{id}", scopeH.Get)
			r.With(sensitiveRL.Limit).Post("/scopes/{id}/unlock", scopeH.Unlock)

			r.Get("/posts", postH.List)
			r.Post("/posts", postH.Create)
			r.Get("/posts/{id}", postH.Get)
			r.Put("/posts/{id}", postH.Update)
			r.Delete("/posts/{id}", postH.Delete)
			r.Get("/posts/{id}/comments", postH.ListComments)
			r.Post("/posts/{id}/comments", postH.AddComment)
			r.Delete("/comments/{id}", postH.DeleteComment)

			r.Get("/events", eventH.List)
			r.Post("/events", eventH.Create)
			r.Get("/events/{id}", eventH.Get)
			r.Put("/events/{id}", eventH.Update)
			r.Delete("/events/{id}", eventH.Delete)
			r.Put("/events/{id}/rsvp", eventH.Reply)
			r.Get("/events/{id}/rsvps", eventH.ListReplies)

			r.Get("/teachers", teacherH.List)
			r.Get("/teachers/{id}", teacherH.Get)
			r.Get("/teachers/{id}/reviews", teacherH.ListReviews)
			r.Post("/teachers/{id}/reviews", teacherH.AddReview)

			r.Get("/schedule", scheduleH.List)

			r.Get("/sources", sourceH.List)
			r.Post("/sources", sourceH.Upload)
			r.Get("/sources/{id}", sourceH.Download)
			r.Get("/sources/{id}/url", sourceH.PresignURL)
			r.Delete("/sources/{id}", sourceH.Delete)

			r.Get("/notifications", notifH.ListUnread)
			r.Put("/notifications/{id}", notifH.MarkAsRead)

			r.Post("/password-recovery/change-password", pwH.ChangePassword)
			r.Post("/confirm-email/{action}", emailH.Action)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Delete("/users/{id}", userH.Delete)

				r.Post("/scopes", scopeH.Create)
				r.Put("/scopes/{id}", scopeH.Update)

				r.Post("/posts/{id}/moderate", postH.Moderate)

				r.Post("/teachers", teacherH.Create)
				r.Put("/teachers/{id}", teacherH.Update)
				r.Delete("/teachers/{id}", teacherH.Delete)

				r.Post("/schedule", scheduleH.Create)
				r.Put("/schedule/{id}", scheduleH.Update)
				r.Delete("/schedule/{id}", scheduleH.Delete)
			})
		})
	})

	return r
}
