package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"breakout-scanner/src/config"
	"breakout-scanner/src/engine"
	"breakout-scanner/src/logger"
	"breakout-scanner/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

// DashboardServer is the alert sink and read surface for the engine: REST
// endpoints for tickers, candidates, sector stats and scan parameters, plus a
// websocket hub that streams delivered alerts to browser clients.
type DashboardServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine

	// Engine read handles
	Store    *engine.TickerStateStore
	Sectors  *engine.SectorAggregator
	Params   *engine.ParameterStore
	Cooldown *engine.CooldownSet
	History  *engine.AlertHistory

	// StreamState reports the upstream connection state for /api/health.
	StreamState func() string

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan socketMessage
	register   chan *Client
	unregister chan *Client

	startedAt time.Time
}

// -----------------------------------------------------------------------------

// socketMessage is the envelope pushed to websocket clients.
type socketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(
	cfg *models.MConfig,
	log *logger.Logger,
	store *engine.TickerStateStore,
	sectors *engine.SectorAggregator,
	params *engine.ParameterStore,
	cooldown *engine.CooldownSet,
	history *engine.AlertHistory,
) *DashboardServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:   cfg,
		Logger:   log,
		engine:   gin.Default(),
		Store:    store,
		Sectors:  sectors,
		Params:   params,
		Cooldown: cooldown,
		History:  history,
		clients:  make(map[*Client]struct{}),
		// Buffered channel so a burst of alerts never blocks the drain loop
		broadcast:  make(chan socketMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		startedAt:  time.Now(),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/tickers", s.getTickers)
	s.engine.GET("/api/candidates", s.getCandidates)
	s.engine.DELETE("/api/candidates/:symbol", s.dismissCandidate)
	s.engine.GET("/api/sectors", s.getSectors)
	s.engine.GET("/api/alerts", s.getAlerts)
	s.engine.GET("/api/pulse", s.getPulse)
	s.engine.GET("/api/params", s.getParams)
	s.engine.PUT("/api/params", s.putParams)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting dashboard server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	streamState := "unknown"
	if s.StreamState != nil {
		streamState = s.StreamState()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"stream_state":   streamState,
		"watched":        s.Store.Size(),
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getTickers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tickers": s.Store.Snapshot(),
	})
}

// -----------------------------------------------------------------------------

// getCandidates returns the symbols currently inside the breakout window,
// evaluated against the live scan parameters.
func (s *DashboardServer) getCandidates(c *gin.Context) {
	params := s.Params.Get()
	evaluator := engine.NewBreakoutEvaluator(
		s.Config.Alerting.CriticalPercentChange,
		s.Config.Alerting.CriticalVolumeMultiplier,
	)

	type candidate struct {
		models.MTickerRecord
		Tier models.MAlertTier `json:"tier"`
	}

	candidates := []candidate{}
	for _, rec := range s.Store.Snapshot() {
		if ok, tier := evaluator.Evaluate(rec, params); ok {
			candidates = append(candidates, candidate{MTickerRecord: rec, Tier: tier})
		}
	}

	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

// -----------------------------------------------------------------------------

// dismissCandidate clears a symbol's cool-down entry so the dashboard can
// drop it from view and let it re-alert on the next qualifying trade.
func (s *DashboardServer) dismissCandidate(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	if _, ok := s.Store.Get(symbol); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown symbol"})
		return
	}

	s.Cooldown.Clear(symbol)
	c.JSON(http.StatusOK, gin.H{"dismissed": symbol})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getSectors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sectors": s.Sectors.Snapshot()})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"alerts": s.History.Latest()})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getPulse(c *gin.Context) {
	c.JSON(http.StatusOK, engine.ComputePulse(s.Store.Snapshot(), 0))
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getParams(c *gin.Context) {
	c.JSON(http.StatusOK, s.Params.Get())
}

// -----------------------------------------------------------------------------

// putParams replaces the scan parameters at runtime. The new window applies
// from the next evaluation onward.
func (s *DashboardServer) putParams(c *gin.Context) {
	var p models.MScanParameters
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid parameters: %v", err)})
		return
	}

	if err := config.ValidateScanParameters(&p); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	s.Params.Update(p)
	s.Logger.Info("Scan parameters updated: %%chg [%.1f, %.1f] vol ratio >= %.1f", p.MinPercentChange, p.MaxPercentChange, p.MinVolumeRatio)

	s.Broadcast("params", p)
	c.JSON(http.StatusOK, p)
}
