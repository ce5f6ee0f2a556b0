package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	"github.com/immutable-ratings/goratings/internal/deploy"
	"github.com/immutable-ratings/goratings/internal/metrics"
	"github.com/immutable-ratings/goratings/internal/protocol"
	"github.com/immutable-ratings/goratings/internal/store"
	"github.com/immutable-ratings/goratings/pkg/cache"
	"github.com/immutable-ratings/goratings/pkg/logger"
	"github.com/immutable-ratings/goratings/pkg/ratelimit"
	"github.com/immutable-ratings/goratings/pkg/sigchan"
	"github.com/immutable-ratings/goratings/pkg/syncgroup"
)

type Config struct {
	JournalDB string
	// Protocol 运行中的协议实例
	Protocol *deploy.Protocol
	// Store 状态持久化（可选，nil 时不落盘）
	Store store.Service
	// SnapshotInterval 状态落盘间隔，默认 5s
	SnapshotInterval time.Duration
	// WriteRateLimit 单个客户端在 WriteRateWindow 内允许的写请求数，
	// 默认 120 次 / 分钟
	WriteRateLimit  int
	WriteRateWindow time.Duration
}

type Server struct {
	cfg       Config
	db        *sql.DB
	proto     *deploy.Protocol
	hub       *feedHub
	summaries *cache.TTLCache[string, marketSummary]
	writeLim  *ratelimit.PerClient

	events chan protocol.Event
	dirty  *sigchan.Chan

	bgCancel func()
	bg       *syncgroup.SyncGroup
}

func New(cfg Config) (*Server, error) {
	if cfg.Protocol == nil {
		return nil, errors.New("protocol is required")
	}
	if cfg.JournalDB == "" {
		return nil, errors.New("journal db path is required")
	}
	if cfg.SnapshotInterval <= 0 {
		cfg.SnapshotInterval = 5 * time.Second
	}
	if cfg.WriteRateLimit <= 0 {
		cfg.WriteRateLimit = 120
	}
	if cfg.WriteRateWindow <= 0 {
		cfg.WriteRateWindow = time.Minute
	}

	if err := os.MkdirAll(filepath.Dir(cfg.JournalDB), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.JournalDB)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite：单连接更稳定
	db.SetMaxIdleConns(1)

	s := &Server{
		cfg:       cfg,
		db:        db,
		proto:     cfg.Protocol,
		hub:       newFeedHub(),
		summaries: cache.New[string, marketSummary](5 * time.Second),
		writeLim:  ratelimit.NewPerClient(cfg.WriteRateLimit, cfg.WriteRateWindow),
		events:    make(chan protocol.Event, 256),
		dirty:     sigchan.New(1),
	}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.startBackground()
	return s, nil
}

// Sink 返回接入引擎的事件接收器。事件进缓冲通道，
// 由后台协程负责流水落库、推送和状态落盘，不阻塞引擎。
func (s *Server) Sink() protocol.Sink {
	return protocol.SinkFunc(func(ev protocol.Event) {
		select {
		case s.events <- ev:
		default:
			logger.Warnf("[server] event buffer full, dropping %s", ev.Name())
		}
		s.dirty.Emit()
	})
}

func (s *Server) Close() error {
	if s.bgCancel != nil {
		s.bgCancel()
		s.bg.Wait()
	}
	s.summaries.Close()
	s.snapshot()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Server) startBackground() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel
	s.bg = syncgroup.NewSyncGroup()

	// 事件消费：流水落库 + WebSocket 推送
	s.bg.Add(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-s.events:
				s.handleEvent(ev)
			}
		}
	})

	// 状态落盘：有变更时按间隔合并写
	s.bg.Add(func() {
		ticker := time.NewTicker(s.cfg.SnapshotInterval)
		defer ticker.Stop()
		pending := false
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.dirty.C():
				pending = true
			case <-ticker.C:
				if pending {
					s.snapshot()
					pending = false
				}
			}
		}
	})

	s.bg.Run()
}

func (s *Server) handleEvent(ev protocol.Event) {
	switch ev.(type) {
	case protocol.RatingUpCreated, protocol.RatingDownCreated:
		metrics.RatingsCreated.Add(1)
	case protocol.MarketCreated:
		metrics.MarketsCreated.Add(1)
	}
	if err := s.journalEvent(ev); err != nil {
		metrics.JournalErrors.Add(1)
		logger.Errorf("[server] journal event: %v", err)
	}
	s.hub.broadcast(ev)
}

func (s *Server) snapshot() {
	if s.cfg.Store == nil {
		return
	}
	if err := s.proto.Save(s.cfg.Store); err != nil {
		logger.Errorf("[server] snapshot failed: %v", err)
		return
	}
	metrics.SnapshotSaves.Add(1)
}

func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.wrap(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	api := r.Group("/api")

	markets := api.Group("/markets")
	markets.POST("/", s.rateLimited(), s.wrap(s.handleMarketCreate))
	markets.GET("/address", s.wrap(s.handleMarketAddress))
	markets.GET("/summary", s.wrap(s.handleMarketSummary))

	rt := api.Group("/ratings")
	rt.POST("/up", s.rateLimited(), s.wrap(s.handleRatingUp))
	rt.POST("/down", s.rateLimited(), s.wrap(s.handleRatingDown))
	rt.POST("/batch", s.rateLimited(), s.wrap(s.handleRatingBatch))
	rt.GET("/preview", s.wrap(s.handlePreviewPayment))
	rt.GET("/journal", s.wrap(s.handleJournalList))

	users := api.Group("/users")
	users.GET("/:address/ratings", s.wrap(s.handleUserRatings))

	admin := api.Group("/admin")
	admin.GET("/", s.wrap(s.handleAdminState))
	admin.POST("/receiver", s.wrap(s.handleSetReceiver))
	admin.POST("/pause", s.wrap(s.handleSetPaused))
	admin.POST("/ownership/transfer", s.wrap(s.handleTransferOwnership))
	admin.POST("/ownership/accept", s.wrap(s.handleAcceptOwnership))
	admin.POST("/recover", s.wrap(s.handleRecoverERC20))

	r.GET("/ws/feed", s.wrap(s.handleFeedWS))

	return r
}

// rateLimited 写接口的按客户端限流
func (s *Server) rateLimited() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.writeLim.Allow(c.ClientIP()) {
			metrics.RateLimited.Add(1)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

type paramsKeyType string

const paramsKey paramsKeyType = "goratings_path_params"

// wrap adapts existing net/http handlers to gin, injecting path params into request context.
func (s *Server) wrap(h func(http.ResponseWriter, *http.Request)) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := map[string]string{}
		for _, p := range c.Params {
			m[p.Key] = p.Value
		}
		ctx := context.WithValue(c.Request.Context(), paramsKey, m)
		c.Request = c.Request.WithContext(ctx)
		h(c.Writer, c.Request)
	}
}

func pathParam(r *http.Request, key string) string {
	if m, ok := r.Context().Value(paramsKey).(map[string]string); ok {
		return m[key]
	}
	return ""
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
