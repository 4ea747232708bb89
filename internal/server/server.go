// Package server exposes the agent dispatcher over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/infofact/internal/dispatch"
	"github.com/ppiankov/infofact/internal/metrics"
	"github.com/ppiankov/infofact/internal/model"
	"github.com/ppiankov/infofact/internal/session"
)

const (
	// Sentinel bodies that bypass analysis
	listAgentsBody   = "list_agents"
	systemPromptBody = "system_prompt"

	// HeaderSessionID carries the session id on analysis responses
	HeaderSessionID = "X-Session-ID"

	noAgentsMessage = "Error: No agents selected. Please select at least one agent."
)

// Dispatcher is the part of dispatch.Manager the server needs
type Dispatcher interface {
	Run(ctx context.Context, article string, names []string) (*model.Analysis, error)
	List() []model.AgentInfo
	ListText() string
	SystemPrompt() string
}

// AnalysisResponse is the JSON form of an analysis
type AnalysisResponse struct {
	SessionID string          `json:"session_id"`
	Output    string          `json:"output"`
	Reports   []*model.Report `json:"reports"`
	Skipped   []string        `json:"skipped,omitempty"`
}

// Server wires the dispatcher, the session store and metrics into echo
type Server struct {
	echo       *echo.Echo
	dispatcher Dispatcher
	sessions   session.Store
	metrics    *metrics.Metrics
	logger     *log.Logger
	cfg        model.ServerConfig
}

// New builds the router. metrics and logger may be nil.
func New(cfg model.ServerConfig, d Dispatcher, sessions session.Store, m *metrics.Metrics, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if sessions == nil {
		sessions = session.NewMemoryStore()
	}

	s := &Server{
		echo:       echo.New(),
		dispatcher: d,
		sessions:   sessions,
		metrics:    m,
		logger:     logger,
		cfg:        cfg,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(s.observe)
	e.HTTPErrorHandler = s.handleError

	e.POST("/infofactagents", s.handleAgents)
	e.GET("/agents", s.listAgents)
	e.GET("/sessions/:id", s.getSession)
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	return s
}

// Handler returns the router for use with httptest or a custom listener
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.echo.Server.ReadTimeout = s.cfg.ReadTimeout
	s.echo.Server.WriteTimeout = s.cfg.WriteTimeout

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Printf("listening on %s", s.cfg.Address)
		if err := s.echo.Start(s.cfg.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// handleAgents serves POST /infofactagents
func (s *Server) handleAgents(c echo.Context) error {
	body := strings.TrimSpace(c.FormValue("Body"))

	switch body {
	case listAgentsBody:
		return c.String(http.StatusOK, s.dispatcher.ListText())
	case systemPromptBody:
		return c.String(http.StatusOK, s.dispatcher.SystemPrompt())
	}

	names := dispatch.ParseSelection(c.FormValue("Agents"))
	if len(names) == 0 {
		return c.String(http.StatusBadRequest, noAgentsMessage)
	}

	sid, created := s.sessions.Ensure(strings.TrimSpace(c.FormValue("SessionID")))
	if created && s.metrics != nil {
		s.metrics.SetSessions(s.sessions.Len())
	}

	analysis, err := s.dispatcher.Run(c.Request().Context(), body, names)
	if err != nil {
		if errors.Is(err, dispatch.ErrNoAgents) {
			return c.String(http.StatusBadRequest, noAgentsMessage)
		}
		return c.String(http.StatusOK, fmt.Sprintf("Error processing your prompt: %v", err))
	}
	analysis.SessionID = sid
	output := analysis.Text()

	if err := s.sessions.Append(sid, model.Exchange{Request: body, Response: output}); err != nil {
		s.logger.Printf("session %s: %v", sid, err)
	}

	c.Response().Header().Set(HeaderSessionID, sid)
	if wantsJSON(c.Request()) {
		return c.JSON(http.StatusOK, AnalysisResponse{
			SessionID: sid,
			Output:    output,
			Reports:   analysis.Reports,
			Skipped:   analysis.Skipped,
		})
	}
	return c.String(http.StatusOK, output)
}

func (s *Server) listAgents(c echo.Context) error {
	return c.JSON(http.StatusOK, s.dispatcher.List())
}

func (s *Server) getSession(c echo.Context) error {
	id := c.Param("id")
	history, err := s.sessions.History(id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "session not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": id,
		"history":    history,
	})
}

// observe logs each request and records it in metrics
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		req := c.Request()
		status := c.Response().Status
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		s.logger.Printf("%d %s %s from %s in %s", status, req.Method, req.URL.Path, c.RealIP(), time.Since(start).Round(time.Millisecond))
		if s.metrics != nil {
			s.metrics.RecordRequest(route, req.Method, status)
		}
		return nil
	}
}

// handleError renders errors as JSON
func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	if code >= http.StatusInternalServerError {
		s.logger.Printf("error on %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}
	if !c.Response().Committed {
		_ = c.JSON(code, map[string]interface{}{"error": msg})
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
