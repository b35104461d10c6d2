// Package fakeapi is an in-memory development backend implementing the
// dashboard REST contract. It backs `taskdash dev-server` and the
// end-to-end tests of the gateway, session and CLI.
package fakeapi

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"taskdash/internal/model"
)

const (
	SeedAdminEmail    = "admin@example.com"
	SeedAdminPassword = "admin"

	defaultTokenTTL = 24 * time.Hour
)

// Server holds the router and the in-memory data behind it.
type Server struct {
	engine *gin.Engine
	log    *zap.Logger
	key    []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
	demo   bool

	mu   sync.Mutex
	data *data
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSigningKey sets the HS256 key used for issued tokens.
func WithSigningKey(key []byte) Option {
	return func(s *Server) {
		if len(key) > 0 {
			s.key = key
		}
	}
}

func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.ttl = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPasswordCost sets the bcrypt cost for stored passwords.
func WithPasswordCost(cost int) Option {
	return func(s *Server) { s.cost = cost }
}

// WithDemoData seeds a sample project with tasks owned by the admin.
func WithDemoData() Option {
	return func(s *Server) { s.demo = true }
}

// New returns a server seeded with the admin account.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		log:  zap.NewNop(),
		key:  []byte(uuid.NewString()),
		ttl:  defaultTokenTTL,
		cost: bcrypt.DefaultCost,
		now:  time.Now,
		data: newData(),
	}
	for _, opt := range opts {
		opt(s)
	}
	admin, err := s.data.addUser("Admin", SeedAdminEmail, SeedAdminPassword, s.cost)
	if err != nil {
		return nil, err
	}
	if s.demo {
		s.seedDemo(admin.ID)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	s.engine = router
	s.registerRoutes()
	return s, nil
}

// Handler exposes the router for http.Server and httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// AddUser registers an extra account and returns its id.
func (s *Server) AddUser(name, email, password string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.data.addUser(name, email, password, s.cost)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

func (s *Server) seedDemo(ownerID int64) {
	p := s.data.createProject("Getting started", "A sample project to explore the dashboard.", model.ProjectActive, ownerID, s.now())
	for _, t := range []struct {
		summary            string
		status, prio, kind int
	}{
		{"Read the README", 4, 2, 3},
		{"Invite a teammate", 1, 3, 3},
		{"Plan the first sprint", 2, 4, 1},
		{"Fix login redirect", 3, 3, 3},
	} {
		s.data.insertTask(model.Task{
			ProjectID: p.ID,
			Summary:   t.summary,
			Status:    statusRef(t.status),
			Priority:  priorityRef(t.prio),
			Type:      typeRef(t.kind),
		})
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.POST("/auth/login", s.handleLogin)

	authed := s.engine.Group("", s.authMiddleware())
	{
		authed.GET("/users", s.handleListUsers)

		projects := authed.Group("/projects")
		{
			projects.GET("", s.handleListProjects)
			projects.POST("", s.handleCreateProject)
			projects.GET("/:id", s.handleGetProject)
			projects.PATCH("/:id", s.handleUpdateProject)
			projects.DELETE("/:id", s.handleDeleteProject)
			projects.GET("/:id/tasks", s.handleListProjectTasks)
			projects.GET("/:id/users", s.handleListMembers)
			projects.POST("/:id/members", s.handleAddMember)
		}

		tasks := authed.Group("/tasks")
		{
			tasks.GET("", s.handleListTasks)
			tasks.POST("", s.handleCreateTask)
			tasks.PATCH("/:id", s.handleUpdateTask)
			tasks.DELETE("/:id", s.handleDeleteTask)
		}
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLogger logs each request with the caller's X-Request-ID, minting one
// when absent.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-ID", reqID)
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("request_id", reqID),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid identifier")
		return 0, false
	}
	return id, true
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

func respondOK(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}
