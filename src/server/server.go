package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"sleep-observer/src/analysis"
	"sleep-observer/src/interfaces"
	"sleep-observer/src/livefeed"
	"sleep-observer/src/logger"
	"sleep-observer/src/models"
	"sleep-observer/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Options carries the collaborators the HTTP layer serves from.
type Options struct {
	Charts      *analysis.ChartFacade
	Reports     interfaces.IReportFetcher
	Preferences interfaces.IPreferenceStore
	History     *utils.SnapshotHistory
	Gatherer    prometheus.Gatherer
	FeedState   func() livefeed.State
	Now         func() time.Time
}

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	opts   Options
	engine *gin.Engine
	http   *http.Server

	// WebSocket clients
	clients     map[*Client]struct{}
	connections atomic.Int64
	broadcast   chan interface{}
	register    chan *Client
	unregister  chan *Client
	refresh     chan *Client
	hubOnce     sync.Once
	stopOnce    sync.Once
	done        chan struct{}

	// Local cache
	latest     models.MEnvironmentSnapshot
	latestAt   time.Time
	stateMutex sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, log *logger.Logger, opts Options) *DashboardServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.Charts == nil {
		opts.Charts = analysis.NewChartFacade(cfg, log)
	}
	if opts.History == nil {
		opts.History = utils.NewSnapshotHistory(cfg.HistorySize)
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &DashboardServer{
		Config:  cfg,
		Logger:  log,
		opts:    opts,
		engine:  gin.New(),
		clients: make(map[*Client]struct{}),
		// Buffered channel so producers never wait on slow sockets
		broadcast:  make(chan interface{}, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		refresh:    make(chan *Client),
		done:       make(chan struct{}),
		latest:     models.NewSnapshotFromDefaults(cfg.Feed.Defaults),
		latestAt:   opts.Now(),
	}
	s.engine.Use(gin.Recovery())

	// CORS for the local dashboard dev server
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))

	env := s.engine.Group("/api/env")
	env.GET("", s.getEnvironment)
	env.GET("/history", s.getHistory)

	charts := s.engine.Group("/api/charts")
	charts.POST("/heart-rate", s.postHeartRate)
	charts.POST("/respiration", s.postRespiration)
	charts.POST("/toss", s.postToss)
	charts.POST("/stages", s.postStages)
	charts.POST("/all", s.postAllCharts)

	s.engine.GET("/api/reports/:date/charts", s.getReportCharts)

	prefs := s.engine.Group("/api/preferences")
	prefs.GET("/:key", s.getPreference)
	prefs.PUT("/:key", s.putPreference)
	prefs.DELETE("/:key", s.deletePreference)

	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the router, mainly for httptest.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start serves until Stop is called.
func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	s.StartHub()

	s.stateMutex.Lock()
	s.http = &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	srv := s.http
	s.stateMutex.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartHub runs the websocket hub loop once.
func (s *DashboardServer) StartHub() {
	s.hubOnce.Do(func() { go s.handleWebsockets() })
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)

		s.stateMutex.RLock()
		srv := s.http
		s.stateMutex.RUnlock()
		if srv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			err = srv.Shutdown(ctx)
		}
		s.Logger.Info("Server stopped")
	})
	return err
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	latestAt := s.latestAt
	s.stateMutex.RUnlock()

	body := gin.H{
		"status":        "ok",
		"connections":   s.connectionCount(),
		"latest_update": latestAt,
	}
	if s.opts.FeedState != nil {
		st := s.opts.FeedState()
		body["feed"] = gin.H{
			"status":  st.Status.String(),
			"attempt": st.Attempt,
		}
	}
	c.JSON(http.StatusOK, body)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"charts":       s.Config.Charts,
		"history_size": s.opts.History.Capacity(),
		"sensors":      len(s.Config.Sensors),
	})
}
