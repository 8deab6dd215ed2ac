package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet/cmd"
	httpin "fleet/internal/adapters/in/http"
	"fleet/internal/adapters/out/mqttevents"
	"fleet/internal/adapters/out/postgres"
	"fleet/internal/adapters/out/rediscache"
	"fleet/internal/pkg/metrics"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB, err := gorm.Open(gormpostgres.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	if err = postgres.Migrate(gormDB); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	var cache *rediscache.Cache
	if configs.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     configs.RedisAddr,
			Password: configs.RedisPassword,
			DB:       configs.RedisDB,
		})
		defer client.Close()
		cache = rediscache.New(client, logger, rediscache.Options{})
		defer cache.Wait()
	}

	var publisher *mqttevents.Publisher
	if configs.MQTTBrokerURL != "" {
		client, err := mqttevents.Connect(configs.MQTTBrokerURL, configs.MQTTClientID)
		if err != nil {
			log.Fatalf("Error connecting to MQTT broker: %v", err)
		}
		defer client.Disconnect(250)
		publisher = mqttevents.NewPublisher(client, configs.MQTTTopicPrefix, logger)
		defer publisher.Wait()
	}

	metrics.Register(prometheus.DefaultRegisterer)

	app := cmd.NewCompositionRoot(configs, gormDB, cache, publisher, logger)

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(app, configs)
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Warnf("No .env file loaded: %v", err)
	}

	config, err := cmd.LoadConfig(os.Getenv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return config
}

func startWebServer(app cmd.CompositionRoot, configs cmd.Config) {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.INFO)

	doc, err := httpin.LoadOpenAPI(context.Background())
	if err != nil {
		e.Logger.Fatal(err)
	}

	server := app.CreateHTTPServer()
	auth := httpin.NewAuthenticator([]byte(configs.JWTSecret))
	if err = server.Register(e, auth, doc, prometheus.DefaultGatherer); err != nil {
		e.Logger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Error(err)
	}
}
