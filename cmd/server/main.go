package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bedrock-chat/internal/answer"
	"bedrock-chat/internal/config"
	"bedrock-chat/internal/deploy"
	"bedrock-chat/internal/handler"
	"bedrock-chat/internal/model"
	"bedrock-chat/internal/service"
	"bedrock-chat/internal/storage"
	"bedrock-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	if err := deploy.ApplyAnswerEndpoint(cfg); err != nil {
		logger.Fatalf("Failed to read answer endpoint from stack outputs: %v", err)
	}

	client, err := answer.New(cfg.Answer)
	if err != nil {
		logger.Fatalf("Failed to create answer client: %v", err)
	}

	store := storage.New(cfg.Storage)
	defaults := model.Settings{
		UseRag:       cfg.Defaults.UseRag,
		StrictPrompt: cfg.Defaults.StrictPrompt,
		ModelName:    cfg.Defaults.ModelName,
	}
	chatService := service.NewChatService(storage.NewSessionStore(store, defaults), client)
	chatHandler := handler.NewChatHandler(chatService, cfg.Render.CartURL)

	gin.SetMode(gin.ReleaseMode)
	router := handler.SetupRouter(cfg, chatHandler)

	// canceled on shutdown so open event streams end
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	defer cancelRequests()

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		BaseContext:    func(net.Listener) context.Context { return baseCtx },
	}

	go func() {
		logger.WithFields(logger.Fields{
			"port":     cfg.Server.Port,
			"storage":  cfg.Storage.Type,
			"provider": cfg.Answer.Provider,
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	cancelRequests()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warnf("Graceful shutdown incomplete, closing: %v", err)
		server.Close()
	}

	settled := make(chan struct{})
	go func() {
		chatService.Wait()
		close(settled)
	}()
	select {
	case <-settled:
	case <-ctx.Done():
		logger.Warn("Pending answers did not settle before shutdown")
	}

	if err := store.Close(); err != nil {
		logger.Errorf("Failed to close storage: %v", err)
	}
	logger.Info("Server stopped")
}
