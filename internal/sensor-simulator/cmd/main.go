// cmd/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"

	sensorSimulator "github.com/LeonardoBeccarini/earthing_monitor/internal/sensor-simulator"
	"github.com/LeonardoBeccarini/earthing_monitor/pkg/rabbitmq"
)

func main() {
	// define flags
	addr := flag.String("addr", ":8000", "listen address")
	mode := flag.String("mode", "AUTO", "initial mode: AUTO, GOOD or BAD")
	extended := flag.Bool("extended", false, "serve soilGood/voltGood and raw ADC counts")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	mqttHost := flag.String("mqtt-host", "", "MQTT broker host; empty disables the LED/buzzer listener")
	mqttPort := flag.Int("mqtt-port", 1883, "MQTT broker port")
	clientID := flag.String("client-id", "earthing-device-sim", "MQTT client ID")
	topic := flag.String("alarm-topic", "earthing/alarm", "alarm topic")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	m, err := sensorSimulator.ParseMode(*mode)
	if err != nil {
		log.Fatal(err)
	}
	gen := sensorSimulator.NewDataGenerator(*seed)
	gen.SetMode(m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var consumer rabbitmq.IConsumer
	if *mqttHost != "" {
		client, err := rabbitmq.NewRabbitMQConn(ctx, &rabbitmq.RabbitMQConfig{
			Host:     *mqttHost,
			Port:     *mqttPort,
			User:     "guest",
			Password: "guest",
			ClientID: *clientID,
		})
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitmq.CloseRabbitMQConn(client)
		consumer = rabbitmq.NewConsumer(client, *topic, 1, nil)
	}

	sim := sensorSimulator.NewSensorSimulator(gen, *extended, consumer, logger)
	go func() {
		if err := sim.Listen(ctx); err != nil {
			logger.Printf("simulator: %v", err)
		}
	}()

	srv := &http.Server{Addr: *addr, Handler: handlers.LoggingHandler(os.Stdout, sim.Handler()), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	logger.Printf("simulator: device on %s (mode=%s extended=%v)", *addr, m, *extended)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http server error: %v", err)
	}
}
