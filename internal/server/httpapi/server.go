// Package httpapi exposes the Daybook services over a JSON HTTP API built
// on chi. Authentication is a Bearer JWT; errors map onto status codes via
// the shared sentinel errors.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/daybook/internal/classify"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/server/models"
	"github.com/dmitrijs2005/daybook/internal/server/services"
	"github.com/dmitrijs2005/daybook/internal/sync"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// UserService is the authentication surface the API needs.
type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// RecordService is the record surface the API needs.
type RecordService interface {
	View(ctx context.Context, userID string) (classify.Buckets, models.Settings, error)
	Lines(ctx context.Context, userID string) ([]string, error)
	AddLine(ctx context.Context, userID, line string) error
	Reset(ctx context.Context, userID string) error
	ToggleTravel(ctx context.Context, userID string) (bool, error)
}

// SyncService is the calendar sync surface the API needs.
type SyncService interface {
	Import(ctx context.Context, userID, cursor string) (sync.ImportResult, error)
	Export(ctx context.Context, userID string) (sync.ExportResult, error)
}

// OAuthProvider is the OAuth flow surface the API needs.
type OAuthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, userID, code string) error
	Disconnect(ctx context.Context, userID string) error
}

// FeedRenderer serializes a user's lines as a calendar.
type FeedRenderer interface {
	Render(lines []string, now time.Time) string
}

// Server holds the handler dependencies and builds the router.
type Server struct {
	logger    logging.Logger
	users     UserService
	records   RecordService
	sync      SyncService
	oauth     OAuthProvider
	feed      FeedRenderer
	jwtSecret []byte
	now       func() time.Time
}

// NewServer wires the API over the given collaborators.
func NewServer(logger logging.Logger, users UserService, records RecordService,
	syncSvc SyncService, oauth OAuthProvider, feed FeedRenderer, jwtSecret []byte) *Server {
	return &Server{
		logger:    logger,
		users:     users,
		records:   records,
		sync:      syncSvc,
		oauth:     oauth,
		feed:      feed,
		jwtSecret: jwtSecret,
		now:       time.Now,
	}
}

// Router assembles the chi router with the middleware stack and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/oauth2/callback", s.handleOAuthCallback)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/lines", s.handleViewLines)
			r.Post("/lines", s.handleAddLine)
			r.Delete("/lines", s.handleResetLines)
			r.Post("/settings/travel", s.handleToggleTravel)
			r.Post("/sync/import", s.handleImport)
			r.Post("/sync/export", s.handleExport)
			r.Get("/feed.ics", s.handleFeed)
			r.Get("/google/connect", s.handleGoogleConnect)
			r.Post("/google/disconnect", s.handleGoogleDisconnect)
		})
	})

	return r
}
