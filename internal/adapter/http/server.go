package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/house-energy-service/internal/auth"
	"github.com/couchcryptid/house-energy-service/internal/domain"
	"github.com/couchcryptid/house-energy-service/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store is the data the API reads.
type Store interface {
	sharedobs.ReadinessChecker
	UserByEmail(ctx context.Context, email string) (domain.User, error)
	HouseForUser(ctx context.Context, userID int) (domain.House, error)
	Intervals(ctx context.Context, houseID int, p domain.Period) ([]domain.IntervalConsumption, error)
	DailyConsumption(ctx context.Context, houseID int, p domain.Period) ([]domain.DailyConsumption, error)
	MonthlyBills(ctx context.Context, houseID int, now time.Time) ([]domain.MonthlyBill, error)
}

// Reports builds report contexts and narratives on demand.
type Reports interface {
	BuildContext(ctx context.Context, houseID int, date time.Time) (domain.ReportContext, error)
	Narrate(ctx context.Context, rc domain.ReportContext) (string, error)
}

// Deps wires the API's collaborators. Reports may be nil, which disables the
// report route.
type Deps struct {
	Store   Store
	Reports Reports
	Tokens  *auth.Tokens
	Metrics *observability.Metrics
	Logger  *slog.Logger

	// Now returns the API's notion of the current time.
	Now func() time.Time
}

// Server is the REST API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds the router and HTTP server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Now == nil {
		deps.Now = domain.Now
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(deps.Logger), requestMetrics(deps.Metrics))
	r.Use(cors.New(corsConfig()))

	h := &handlers{deps: deps}

	r.GET("/", h.index)
	r.GET("/healthz", gin.WrapF(sharedobs.LivenessHandler()))
	r.GET("/readyz", gin.WrapF(sharedobs.ReadinessHandler(deps.Store)))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/login", h.login)

	api := r.Group("/api", auth.Middleware(deps.Tokens))
	api.GET("/consumption/today", h.today)
	api.GET("/consumption/lastweek", h.lastWeek)
	api.GET("/consumption/download/:start/:end", h.downloadRange)
	api.GET("/consumption/quarter/:quarter/:year", h.quarter)
	api.GET("/consumption/:start/:end", h.rangeTotals)
	api.GET("/bills", h.bills)
	api.GET("/bills/download/:quarter/:year", h.downloadQuarter)
	if deps.Reports != nil {
		api.GET("/reports/:date", h.report)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 3 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		logger: deps.Logger,
	}
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowOriginFunc = func(string) bool { return true }
	cfg.AddAllowHeaders("Authorization")
	cfg.AddExposeHeaders("Content-Disposition")
	cfg.AllowCredentials = true
	return cfg
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
