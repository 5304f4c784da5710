// Package main is the entry point for the VigiaGuard scan agent.
// It watches a page snapshot and hides whatever the block lists flag.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VigiaStudios/VigiaGuardGo/internal/engine"
	"github.com/VigiaStudios/VigiaGuardGo/internal/page"
	"github.com/VigiaStudios/VigiaGuardGo/internal/settings"
	"github.com/VigiaStudios/VigiaGuardGo/internal/storage"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/config"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/errors"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/logger"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/mqtt"
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

	logger.System("Iniciando VigiaGuard Scanner...", "Main")

	// Initialize error handler
	errors.Init(cfg.ErrorWebhook, nil)

	if cfg.SnapshotPath == "" {
		logger.Critical("snapshotPath no está configurado", "Main")
		os.Exit(1)
	}

	// Open the local cache
	gateway, err := storage.OpenBolt(cfg.CachePath)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error abriendo la caché local: %v", err), "Main")
		os.Exit(1)
	}
	defer gateway.Close()

	client := engine.NewClient(cfg)

	// Resolve the install identity, registering on first run
	uuid, err := resolveIdentity(gateway, client)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error registrando la identidad: %v", err), "Main")
		os.Exit(1)
	}
	logger.Info(fmt.Sprintf("Identidad del agente: %s", uuid), "Main")

	toggle, err := settings.NewToggle(gateway)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error cargando los ajustes: %v", err), "Main")
		os.Exit(1)
	}

	// Initialize MQTT and the control message bus. Without a broker the
	// agent still scans, it just stops receiving live updates.
	mqttClientID := "vigiaguard_scanner"
	if !cfg.IsProd() {
		mqttClientID = "vigiaguard_scanner_canary"
	}
	mqttClient := mqtt.Init(
		cfg.MQTTHost,
		cfg.MQTTPort,
		cfg.MQTTUser,
		cfg.MQTTPassword,
		mqttClientID,
	)
	defer mqttClient.Destroy()

	var bus engine.MessageBus
	if mqttClient.IsConnected() {
		mqttBus, err := engine.NewMqttBus(mqttClient, uuid)
		if err != nil {
			logger.Warn(fmt.Sprintf("Error suscribiendo al bus MQTT: %v", err), "Main")
			bus = engine.NewMemoryBus()
		} else {
			bus = mqttBus
		}
	} else {
		logger.Warn("Sin broker MQTT, el agente funciona sin mensajes de control", "Main")
		bus = engine.NewMemoryBus()
	}
	defer bus.Close()

	reconciler := engine.NewReconciler(gateway, client, uuid)
	matcher := engine.NewMatcher(toggle)
	observer := engine.NewObserver(bus, matcher, reconciler, toggle, &snapshotSource{path: cfg.SnapshotPath}, engine.ObserverOptions{
		Debounce:        cfg.Debounce,
		RescanInterval:  cfg.RescanInterval,
		URLPollInterval: cfg.URLPollInterval,
		Limiter:         &settings.RateLimiter{Window: time.Second, MaxEvents: 30},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go observer.Run(ctx)

	logger.Success("VigiaGuard Scanner iniciado correctamente!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando VigiaGuard Scanner...", "Main")
}

// resolveIdentity returns the stored UUID, registering with the service
// the first time the agent runs. First runs also enable scanning.
func resolveIdentity(gateway storage.Gateway, client *engine.Client) (string, error) {
	uuid, err := gateway.GetString(storage.KeyUUID)
	if err != nil {
		return "", err
	}
	if uuid != "" {
		return uuid, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uuid, err = client.Register(ctx, "VigiaGuardScanner/"+config.Version, "")
	if err != nil {
		return "", err
	}
	if err := gateway.SetString(storage.KeyUUID, uuid); err != nil {
		return "", err
	}
	if err := gateway.SetBool(storage.KeyStatus, true); err != nil {
		return "", err
	}
	return uuid, nil
}

// snapshotSource loads the page snapshot from disk on every poll.
type snapshotSource struct {
	path string
}

func (s *snapshotSource) Load(ctx context.Context) (page.Document, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	// The snapshot address carries the modification time so a rewritten
	// file counts as a navigation.
	url := fmt.Sprintf("file://%s?mtime=%d", s.path, info.ModTime().UnixNano())
	return page.ParseHTML(url, f)
}
