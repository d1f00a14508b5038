package main

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	DeviceURL  string
	DataPath   string
	PollEvery  time.Duration
	ClockEvery time.Duration
	Timeout    time.Duration

	// TrustDeviceVerdict prefers soilGood/voltGood from the device when present.
	TrustDeviceVerdict bool

	GRPCPort string // vuoto = gRPC health disabilitato

	// MQTT (opzionale): vuoto = niente mirror dell'allarme
	MQTTHost     string
	MQTTPort     int
	MQTTUser     string
	MQTTPassword string
	MQTTClientID string
	AlarmTopic   string

	BreakerFailures int
	BreakerOpenFor  time.Duration
	AlarmRefresh    time.Duration
}

func getenv(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvBool(k string, d bool) bool {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

func getenvMs(k string, d int) time.Duration {
	return time.Duration(getenvInt(k, d)) * time.Millisecond
}

func loadConfig() Config {
	grpcPort, ok := os.LookupEnv("GRPC_PORT")
	if !ok {
		grpcPort = "9090"
	}
	return Config{
		Port: getenv("PORT", "8080"),

		DeviceURL:  getenv("DEVICE_URL", "http://localhost:8000"),
		DataPath:   getenv("DATA_PATH", "/data"),
		PollEvery:  getenvMs("POLL_INTERVAL_MS", 1000),
		ClockEvery: getenvMs("CLOCK_INTERVAL_MS", 1000),
		Timeout:    getenvMs("TIMEOUT_MS", 2000),

		TrustDeviceVerdict: getenvBool("TRUST_DEVICE_VERDICT", false),

		GRPCPort: strings.TrimSpace(grpcPort),

		MQTTHost:     getenv("MQTT_HOST", ""),
		MQTTPort:     getenvInt("MQTT_PORT", 1883),
		MQTTUser:     getenv("MQTT_USER", "guest"),
		MQTTPassword: getenv("MQTT_PASSWORD", "guest"),
		MQTTClientID: getenv("MQTT_CLIENT_ID", "earthing-dashboard"),
		AlarmTopic:   getenv("ALARM_TOPIC", "earthing/alarm"),

		BreakerFailures: getenvInt("CB_FAILS", 3),
		BreakerOpenFor:  getenvMs("CB_OPEN_MS", 10000),
		AlarmRefresh:    getenvMs("ALARM_REFRESH_MS", 30000),
	}
}
