package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/aureliusnoble/kingslayer-server/config"
	"github.com/aureliusnoble/kingslayer-server/game"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	if len(allowedOrigins) == 0 {
		return r
	}

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// logger setup
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	gin.SetMode(cfg.GinMode)

	registry := game.NewRegistry()

	tickerGen := game.NewTickerGen()
	go registry.RunTimerLoop(context.Background(), &tickerGen)

	r := CreateServer(cfg.AllowedOrigins)

	gameHandler := game.NewHandler(registry)
	gameHandler.RegisterRoutes(r)

	slog.Info("listening", "port", cfg.Port)
	r.Run(":" + cfg.Port)
}
