package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"n8nexplorer/internal/colors"
	"n8nexplorer/internal/explorer"
	"n8nexplorer/internal/hierarchy"
	"n8nexplorer/internal/logging"
	"n8nexplorer/internal/settings"
)

// Explorer is the controller surface the server drives.
type Explorer interface {
	Refresh(ctx context.Context) (explorer.Outcome, error)
	Cached(ctx context.Context) (explorer.Outcome, bool)
	Last() (explorer.Outcome, bool)
	State() explorer.State
}

// Server serves the explorer API.
type Server struct {
	explorer Explorer
	colors   *colors.Registry
	settings *settings.Manager
	logger   *slog.Logger
	token    string

	engine   *gin.Engine
	server   *http.Server
	listener net.Listener
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithToken requires "Authorization: Bearer <token>" on /api routes. An empty
// token leaves them open.
func WithToken(token string) ServerOption {
	return func(s *Server) {
		s.token = strings.TrimSpace(token)
	}
}

// NewServer builds the router. registry and prefs may be nil, in which case
// the color and settings routes report 503.
func NewServer(exp Explorer, registry *colors.Registry, prefs *settings.Manager, logger *slog.Logger, opts ...ServerOption) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		explorer: exp,
		colors:   registry,
		settings: prefs,
		logger:   logging.NewComponentLogger(logger, "api"),
		engine:   gin.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())

	s.engine.GET("/health", s.handleHealth)
	apiGroup := s.engine.Group("/api", s.authMiddleware())
	{
		apiGroup.GET("/tree", s.handleTree)
		apiGroup.POST("/refresh", s.handleRefresh)
		apiGroup.GET("/colors", s.handleColors)
		apiGroup.PUT("/colors", s.handleSetColor)
		apiGroup.DELETE("/colors", s.handleResetColor)
		apiGroup.GET("/settings", s.handleSettings)
		apiGroup.PUT("/settings/dark-mode", s.handleSetDarkMode)
	}

	s.server = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Start listens on bind and serves until ctx is canceled or Stop is called.
func (s *Server) Start(ctx context.Context, bind string) error {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "api server error", "api_server_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check that the bind address is free"))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening",
		logging.String(logging.FieldEventType, "api_server_started"),
		logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the listening address once Start succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting up to five seconds for open requests.
func (s *Server) Stop() {
	if s == nil || s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("api request",
			logging.String(logging.FieldEventType, "api_request"),
			logging.String("method", c.Request.Method),
			logging.String("path", c.FullPath()),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("latency", time.Since(start)))
	}
}

// authMiddleware validates bearer tokens when a token is configured.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.token == "" {
			c.Next()
			return
		}
		auth := c.GetHeader("Authorization")
		presented, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(s.token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", State: string(s.explorer.State())})
}

func (s *Server) handleTree(c *gin.Context) {
	ctx := c.Request.Context()
	outcome, ok := s.explorer.Last()
	if !ok {
		outcome, ok = s.explorer.Cached(ctx)
	}
	if !ok {
		outcome = explorer.Outcome{State: s.explorer.State(), Result: hierarchy.Organize(nil)}
	}
	c.JSON(http.StatusOK, FromOutcome(outcome, s.colorLookup(ctx), s.baseURL(ctx)))
}

func (s *Server) handleRefresh(c *gin.Context) {
	ctx := c.Request.Context()
	outcome, err := s.explorer.Refresh(ctx)
	switch {
	case errors.Is(err, explorer.ErrRefreshInProgress):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, explorer.ErrNotConfigured):
		c.JSON(http.StatusPreconditionFailed, ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, FromOutcome(outcome, s.colorLookup(ctx), s.baseURL(ctx)))
}

func (s *Server) handleColors(c *gin.Context) {
	if s.colors == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "color registry unavailable"})
		return
	}
	c.JSON(http.StatusOK, s.colorsResponse(c.Request.Context()))
}

func (s *Server) handleSetColor(c *gin.Context) {
	if s.colors == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "color registry unavailable"})
		return
	}
	var req SetColorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "folder path cannot be empty"})
		return
	}
	color, err := colors.Parse(req.Color)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := s.colors.Set(ctx, req.Path, color); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.colorsResponse(ctx))
}

func (s *Server) handleResetColor(c *gin.Context) {
	if s.colors == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "color registry unavailable"})
		return
	}
	path := c.Query("path")
	if strings.TrimSpace(path) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "path query parameter is required"})
		return
	}
	ctx := c.Request.Context()
	if err := s.colors.Reset(ctx, path); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.colorsResponse(ctx))
}

func (s *Server) handleSettings(c *gin.Context) {
	if s.settings == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "settings unavailable"})
		return
	}
	c.JSON(http.StatusOK, s.settingsResponse(c.Request.Context()))
}

func (s *Server) handleSetDarkMode(c *gin.Context) {
	if s.settings == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "settings unavailable"})
		return
	}
	var req DarkModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	ctx := c.Request.Context()
	if err := s.settings.SetDarkMode(ctx, *req.Enabled); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.settingsResponse(ctx))
}

func (s *Server) colorsResponse(ctx context.Context) ColorsResponse {
	assignments := s.colors.All(ctx)
	out := make(map[string]string, len(assignments))
	for path, color := range assignments {
		out[path] = color.String()
	}
	return ColorsResponse{Assignments: out, Palette: Palette()}
}

func (s *Server) settingsResponse(ctx context.Context) SettingsResponse {
	creds := s.settings.Credentials(ctx)
	return SettingsResponse{
		Configured:       creds.Configured(),
		BaseURL:          creds.BaseURL,
		CredentialSource: creds.Source,
		DarkMode:         s.settings.DarkMode(ctx),
	}
}

// colorLookup reads the assignment map once per response.
func (s *Server) colorLookup(ctx context.Context) ColorLookup {
	if s.colors == nil {
		return nil
	}
	assignments := s.colors.All(ctx)
	return func(path string) colors.Color {
		if color, ok := assignments[path]; ok && color.Valid() {
			return color
		}
		return colors.Default
	}
}

func (s *Server) baseURL(ctx context.Context) string {
	if s.settings == nil {
		return ""
	}
	return s.settings.Credentials(ctx).BaseURL
}
