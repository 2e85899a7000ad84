package main

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"focus-api/api"
	"focus-api/notify"
	"focus-api/schedule"
	"focus-api/storage"
	"focus-api/tasks"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
	logger := log.StandardLogger()

	otel.SetTracerProvider(sdktrace.NewTracerProvider())

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	fileStore, err := storage.NewFileStore(dataDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	var backend tasks.Backend = fileStore
	var deduper api.Deduper
	var notifier notify.Notifier = notify.NewLogNotifier(logger)

	if redisConn := os.Getenv("REDIS_CONNECTION_STRING"); redisConn != "" {
		rc := redis.NewClient(parseRedisOptions(redisConn))
		backend = storage.NewCache(fileStore, rc, envDuration("CACHE_TTL", 24*time.Hour))
		deduper = api.NewRedisDeduper(rc, envDuration("DEDUPER_TTL", 24*time.Hour))

		channel := os.Getenv("REMINDER_CHANNEL")
		if channel == "" {
			channel = "focus:reminders"
		}
		notifier = notify.NewPubSubNotifier(rc, channel)
	}

	store := tasks.New(backend, time.Now, logger)
	store.Load(context.Background())

	// Resolve notification permission once at startup; denial only disables
	// reminders, everything else keeps working.
	if state, err := notifier.RequestPermission(context.Background()); err != nil {
		log.WithError(err).Warnf("notification permission %s", state)
	} else {
		log.Infof("notification permission %s", state)
	}

	scheduler := schedule.New(store, notifier, envDuration("REMINDER_INTERVAL", schedule.DefaultInterval), time.Now, logger)
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	go scheduler.Run(schedulerCtx)

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "Idempotency-Key"},
	}))

	api.Register(e, store, notifier, deduper, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}

// parseRedisOptions accepts a redis URL or a comma-separated
// host:port,password=...,ssl=true connection string.
func parseRedisOptions(connStr string) *redis.Options {
	opts, err := redis.ParseURL(connStr)
	if err == nil {
		return opts
	}
	parts := strings.Split(connStr, ",")
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.ToLower(kv[1]) == "true" {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}

func envDuration(name string, fallback time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Fatalf("invalid %s: %v", name, err)
	}
	return d
}
