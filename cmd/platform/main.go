package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/sharkfunded/platform/app/repository"
	"github.com/sharkfunded/platform/internal/pkg/cache"
	"github.com/sharkfunded/platform/internal/pkg/database"
	"github.com/sharkfunded/platform/internal/pkg/env"
	"github.com/sharkfunded/platform/internal/pkg/metrics/counter"
	"github.com/sharkfunded/platform/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	app := fiber.New(fiber.Config{
		AppName: "sharkfunded-platform",
	})

	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	router.InstallRouter(app)

	startCounterFlusher()

	return app
}

// startCounterFlusher periodically drains the buffered webhook counters from
// redis into gateway_stats.
func startCounterFlusher() {
	interval := time.Duration(env.GetEnvInt("COUNTER_FLUSH_SECONDS", 60)) * time.Second
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if err := counter.FlushAll(); err != nil {
				log.Printf("webhook counter flush failed: %v", err)
			}
		}
	}()
}
