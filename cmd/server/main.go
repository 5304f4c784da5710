// Package main is the entry point for the VigiaGuard block-list service.
// It initializes all systems and starts the REST API.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/VigiaStudios/VigiaGuardGo/pkg/config"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/database"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/errors"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/logger"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/mqtt"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/web"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Iniciando VigiaGuard Service...", "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	// Initialize error handler
	errors.Init(cfg.ErrorWebhook, nil)

	// Initialize database
	db, err := database.Init(cfg.MongoDBURL, cfg.DBName)
	if err != nil {
		logger.Error(fmt.Sprintf("Error connecting to database: %v", err), "Main")
		logger.Debug(fmt.Sprintf("Error connecting to database: %v", cfg.MongoDBURL), "Main")
		// Continue without database- it will attempt to reconnect
	}
	defer func() {
		if db != nil {
			err := db.Disconnect()
			if err != nil {
				return
			}
		}
	}()

	// Initialize global DataManagers
	if db != nil {
		database.InitGlobalDataManagers(db)
	}

	// Initialize MQTT (optional: used to fan block-list changes out to
	// agents that listen over the broker instead of the socket)
	mqttClientID := "vigiaguard"
	if !cfg.IsProd() {
		mqttClientID = "vigiaguard_canary"
	}

	mqttClient := mqtt.Init(
		cfg.MQTTHost,
		cfg.MQTTPort,
		cfg.MQTTUser,
		cfg.MQTTPassword,
		mqttClientID,
	)
	defer mqttClient.Destroy()

	// Initialize the websocket hub for connected pages
	hub := ws.NewHub()
	go hub.Run()

	// Initialize web server
	webServer := web.Init(cfg.LogsWebServerHook)
	web.SetupAPIRoutes(webServer, database.NewStore(), &fanoutNotifier{hub: hub, mqtt: mqttClient})
	webServer.GET("/api/users/ws", hub.ServeWS)
	webServer.StartAsync(cfg.Port)

	logger.Success("VigiaGuard Service iniciado correctamente!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando VigiaGuard Service...", "Main")
}

// fanoutNotifier pushes block-list changes to every transport the
// agents listen on: the websocket hub and the MQTT event topics.
type fanoutNotifier struct {
	hub  *ws.Hub
	mqtt *mqtt.MqttCommunicator
}

func (n *fanoutNotifier) BlockListChanged(uuid, action string) {
	n.hub.BlockListChanged(uuid, action)

	if n.mqtt != nil && n.mqtt.IsConnected() {
		payload := map[string]string{"action": "RE_EVALUATE_POSTS"}
		if err := n.mqtt.Publish(fmt.Sprintf("vigia/events/%s", uuid), payload); err != nil {
			logger.Warn(fmt.Sprintf("Error publicando evento MQTT: %v", err), "Main")
		}
	}
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
