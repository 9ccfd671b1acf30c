package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/watchroom/server/internal/controller"
	broadcastNoop "github.com/watchroom/server/internal/repository/broadcast/noop"
	broadcastRedis "github.com/watchroom/server/internal/repository/broadcast/redis"
	connInmemory "github.com/watchroom/server/internal/repository/connection/inmemory"
	roomInmemory "github.com/watchroom/server/internal/repository/room/inmemory"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/ctxlogger"
	"github.com/watchroom/server/pkg/redisclient"
)

type AppConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	LogLevel       string `json:"log_level"`
	MembersLimit   int    `json:"members_limit"`
	QueueLimit     int    `json:"queue_limit"`
	RoomCodeLength int    `json:"room_code_length"`
	RedisHost      string `json:"redis_host"`
	RedisPort      int    `json:"redis_port"`
	RedisPassword  string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.MembersLimit < 1 {
		return fmt.Errorf("members limit must be greater than 0")
	}
	if cfg.QueueLimit < 1 {
		return fmt.Errorf("queue limit must be greater than 0")
	}
	if cfg.RoomCodeLength < 4 {
		return fmt.Errorf("room code length must be at least 4")
	}
	return nil
}

// broadcastBus is what the controller needs from either bus implementation.
type broadcastBus interface {
	Publish(ctx context.Context, roomCode string, event any) error
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}
	logger := slog.New(&h)

	roomRepo := roomInmemory.NewRepo(roomInmemory.Config{
		CodeLength:   cfg.RoomCodeLength,
		MembersLimit: cfg.MembersLimit,
		QueueLimit:   cfg.QueueLimit,
	}, logger)
	connRepo := connInmemory.NewRepo(logger)
	roomService := room.NewService(roomRepo, connRepo, logger)

	serverCtx, serverStopCtx := context.WithCancel(ctx)
	defer serverStopCtx()

	// a single process needs no bus; with redis configured, every room event
	// also reaches members whose connection landed on another process
	var bus broadcastBus = broadcastNoop.NewBus()
	var redisBus *broadcastRedis.Bus
	if cfg.RedisHost != "" {
		rc, err := redisclient.NewRedisClient(&redisclient.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		defer rc.Close()

		redisBus = broadcastRedis.NewBus(rc, logger)
		bus = redisBus
	}

	ctrl := controller.NewController(roomService, bus, logger)

	if redisBus != nil {
		go func() {
			err := redisBus.Run(serverCtx, func(roomCode string, event json.RawMessage) {
				ctrl.DeliverBusEvent(serverCtx, roomCode, event)
			})
			if err != nil && serverCtx.Err() == nil {
				logger.ErrorContext(serverCtx, "broadcast bus subscription ended", "error", err)
			}
		}()
	}

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: ctrl.GetMux()}

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
