package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-solo/internal/config"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/repository"
	"github.com/rocketscienceinc/tictactoe-solo/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-solo/internal/service"
	"github.com/rocketscienceinc/tictactoe-solo/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-solo/transport/rest"
	"github.com/rocketscienceinc/tictactoe-solo/transport/websocket"
	"golang.org/x/sync/errgroup"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mode, err := entity.ParseMode(conf.Game.DefaultMode)
	if err != nil {
		return fmt.Errorf("invalid game config: %w", err)
	}

	difficulty, err := entity.ParseDifficulty(conf.Game.DefaultDifficulty)
	if err != nil {
		return fmt.Errorf("invalid game config: %w", err)
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisClient, err := storage.NewRedisClient(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisClient.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	snapshotRepo := repository.NewSnapshotRepository(redisClient, conf.Redis.SnapshotTTL)
	botService := service.NewBotService(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))) //nolint: gosec // game randomness
	sessionManager := usecase.NewSessionManager(logger, snapshotRepo, botService, usecase.Options{
		Mode:          mode,
		Difficulty:    difficulty,
		OpponentDelay: conf.Game.OpponentDelay,
		IdleTimeout:   conf.Game.SessionIdleTimeout,
	})

	router := rest.NewRouter(logger, sessionManager, websocket.New(logger, sessionManager))

	group, groupCtx := errgroup.WithContext(ctx)

	// run HTTP server
	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(groupCtx, conf.HTTPPort, router); httpErr != nil {
			return fmt.Errorf("HTTP server error: %w", httpErr)
		}

		return nil
	})

	// close idle sessions
	if conf.Game.SessionIdleTimeout > 0 && conf.Game.JanitorInterval > 0 {
		group.Go(func() error {
			return sessionManager.RunJanitor(groupCtx, conf.Game.JanitorInterval)
		})
	}

	err = group.Wait()

	sessionManager.Shutdown(context.Background())
	log.Info("Application context canceled, shutting down")

	return err
}
