package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/immutable-ratings/goratings/internal/bank"
	"github.com/immutable-ratings/goratings/internal/deploy"
	"github.com/immutable-ratings/goratings/internal/metrics"
	"github.com/immutable-ratings/goratings/internal/protocol"
	"github.com/immutable-ratings/goratings/internal/server"
	"github.com/immutable-ratings/goratings/internal/store"
	"github.com/immutable-ratings/goratings/pkg/config"
	"github.com/immutable-ratings/goratings/pkg/logger"
	"github.com/immutable-ratings/goratings/pkg/shutdown"
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	getenv := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}

	var (
		configPath = flag.String("config", getenv("GORATINGS_CONFIG", ""), "yaml config file path")
		listenAddr = flag.String("listen", getenv("GORATINGS_LISTEN", ""), "HTTP listen address")
		storePath  = flag.String("store", getenv("GORATINGS_STORE", ""), "badger state directory")
		journalDB  = flag.String("journal", getenv("GORATINGS_JOURNAL", ""), "sqlite journal file path")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config failed: %v", err)
		}
		cfg = loaded
	}
	if *listenAddr != "" {
		cfg.Server.Listen = *listenAddr
	}
	if *storePath != "" {
		cfg.Store.Path = *storePath
	}
	if *journalDB != "" {
		cfg.Server.JournalDB = *journalDB
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}

	svc, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("open store failed: %v", err)
	}

	relay := protocol.NewRelay()
	proto, err := loadOrDeploy(svc, relay, cfg)
	if err != nil {
		log.Fatalf("init protocol failed: %v", err)
	}

	srv, err := server.New(server.Config{
		JournalDB: cfg.Server.JournalDB,
		Protocol:  proto,
		Store:     svc,
	})
	if err != nil {
		log.Fatalf("init server failed: %v", err)
	}
	relay.SetTarget(srv.Sink())

	debugCtx, debugCancel := context.WithCancel(context.Background())
	if cfg.Server.DebugListen != "" {
		if _, err := metrics.StartAsync(debugCtx, cfg.Server.DebugListen); err != nil {
			logger.Warnf("debug server failed: %v", err)
		} else {
			logger.Infof("debug server listening on %s", cfg.Server.DebugListen)
		}
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("goratings listening on %s", cfg.Server.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("http server error: %v", err)
		}
	}()

	mgr := shutdown.NewManager()
	mgr.OnShutdown(func(ctx context.Context) { _ = httpSrv.Shutdown(ctx) })
	mgr.OnShutdown(func(context.Context) { _ = srv.Close() })
	mgr.OnShutdown(func(context.Context) { debugCancel() })

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	<-stopCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mgr.Shutdown(ctx)
	// 最后一次落盘在 srv.Close 里完成，存储最后关
	_ = svc.Close()

	fmt.Println("server stopped")
}

// loadOrDeploy 存储里有状态则恢复，否则按配置做一次全新部署
func loadOrDeploy(svc store.Service, sink protocol.Sink, cfg *config.Config) (*deploy.Protocol, error) {
	proto, err := deploy.Load(svc, sink, cfg.Protocol.MaxRatings)
	if err == nil {
		logger.Infof("protocol restored: ratings=%s", proto.Deployment.Ratings.Hex())
		return proto, nil
	}
	if !errors.Is(err, store.ErrNotExists) {
		return nil, err
	}

	if !common.IsHexAddress(cfg.Protocol.Deployer) || !common.IsHexAddress(cfg.Protocol.Receiver) {
		return nil, errors.New("fresh deploy requires protocol.deployer and protocol.receiver in config")
	}
	proto, err = deploy.Run(deploy.Params{
		ChainID:    cfg.Protocol.ChainID,
		Deployer:   common.HexToAddress(cfg.Protocol.Deployer),
		Receiver:   common.HexToAddress(cfg.Protocol.Receiver),
		Sink:       sink,
		Bank:       bank.New(),
		MaxRatings: cfg.Protocol.MaxRatings,
	})
	if err != nil {
		return nil, err
	}
	if err := proto.Save(svc); err != nil {
		return nil, err
	}
	return proto, nil
}
