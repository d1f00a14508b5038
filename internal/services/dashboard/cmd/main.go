package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"

	"github.com/LeonardoBeccarini/earthing_monitor/internal/safety"
	"github.com/LeonardoBeccarini/earthing_monitor/internal/services/dashboard"
	"github.com/LeonardoBeccarini/earthing_monitor/pkg/rabbitmq"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stderr, "", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	frame := dashboard.NewFrame()
	trend := dashboard.NewTrendChart(logger)
	hub := dashboard.NewHub(logger)
	metrics := dashboard.NewMetrics()
	health := dashboard.NewHealthReporter(logger)

	rc := frame.Context()
	rc.Chart = dashboard.Charts(rc.Chart, trend)

	observers := []dashboard.Observer{metrics, health}

	// === MQTT (opzionale): LED rosso + buzzer lato device ===
	if cfg.MQTTHost != "" {
		mq, err := rabbitmq.NewRabbitMQConn(ctx, &rabbitmq.RabbitMQConfig{
			Host:     cfg.MQTTHost,
			Port:     cfg.MQTTPort,
			User:     cfg.MQTTUser,
			Password: cfg.MQTTPassword,
			ClientID: cfg.MQTTClientID,
		})
		if err != nil {
			// the dashboard works without the broker, only the mirror is lost
			logger.Printf("dashboard: alarm mirror disabled: %v", err)
		} else {
			pub := rabbitmq.NewPublisher(mq, cfg.AlarmTopic)
			defer pub.Close()
			mirror := dashboard.NewAlarmMirror(pub, dashboard.AlarmConfig{
				BreakerFailures: cfg.BreakerFailures,
				BreakerOpenFor:  cfg.BreakerOpenFor,
				Refresh:         cfg.AlarmRefresh,
			}, metrics, logger)
			go mirror.Run(ctx)
			observers = append(observers, mirror)
			logger.Printf("dashboard: mirroring alarm on %s", cfg.AlarmTopic)
		}
	}

	poller := dashboard.NewPoller(cfg.DeviceURL, cfg.DataPath, cfg.Timeout, logger)
	sched := dashboard.NewScheduler(dashboard.SchedulerConfig{
		Source:     poller,
		Evaluator:  safety.NewEvaluator(cfg.TrustDeviceVerdict),
		Context:    rc,
		PollEvery:  cfg.PollEvery,
		ClockEvery: cfg.ClockEvery,
		Metrics:    metrics,
		Observers:  observers,
		Publish:    func() { hub.Broadcast(frame.Commit()) },
		Logger:     logger,
	})

	if cfg.GRPCPort != "" {
		go func() {
			if err := health.Serve(ctx, ":"+cfg.GRPCPort); err != nil {
				logger.Printf("dashboard: %v", err)
			}
		}()
	}

	router := dashboard.NewRouter(dashboard.Server{
		Scheduler: sched,
		Frame:     frame,
		Hub:       hub,
		Chart:     trend,
		Metrics:   metrics,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.LoggingHandler(os.Stdout, router),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Printf("dashboard: HTTP listening on :%s, polling %s every %s", cfg.Port, poller.URL(), cfg.PollEvery)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	sched.Run(ctx)

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
	logger.Println("dashboard: shutdown complete")
}
