// Command snapdog is the SnapDog multi-room audio controller daemon. It
// wires Snapcast, MQTT, KNX, and Subsonic into one command/status surface
// exposed over HTTP and WebSocket.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/metaneutrons/snapdog2-sub015/internal/buildinfo"
	"github.com/metaneutrons/snapdog2-sub015/internal/clock"
	"github.com/metaneutrons/snapdog2-sub015/internal/config"
	"github.com/metaneutrons/snapdog2-sub015/internal/discovery"
	"github.com/metaneutrons/snapdog2-sub015/internal/fanout"
	"github.com/metaneutrons/snapdog2-sub015/internal/httpapi"
	"github.com/metaneutrons/snapdog2-sub015/internal/knx"
	"github.com/metaneutrons/snapdog2-sub015/internal/media"
	"github.com/metaneutrons/snapdog2-sub015/internal/model"
	"github.com/metaneutrons/snapdog2-sub015/internal/mqtt"
	"github.com/metaneutrons/snapdog2-sub015/internal/router"
	"github.com/metaneutrons/snapdog2-sub015/internal/snapcast"
	"github.com/metaneutrons/snapdog2-sub015/internal/store"
	"github.com/metaneutrons/snapdog2-sub015/internal/sysstats"
	"github.com/metaneutrons/snapdog2-sub015/internal/ws"
	"github.com/metaneutrons/snapdog2-sub015/internal/zone"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logging isn't configured yet; this is the one place we write to
		// stderr directly rather than through slog.
		os.Stderr.WriteString("snapdog: config: " + err.Error() + "\n")
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(cfg.System.LogLevel)})))
	slog.Info("snapdog: starting", "environment", cfg.System.Environment, "application", cfg.System.ApplicationName)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	zones := store.NewZoneStore(seedZones(cfg.Zones))
	clients := store.NewClientStore(seedClients(cfg.Clients))
	global := store.NewGlobalStore(model.GlobalState{
		Version:        buildinfo.Version(),
		BuildTimestamp: buildinfo.BuildTimestamp(),
	})

	reporter := &globalReporter{global: global}

	adapter := snapcast.NewAdapter(nil)
	reconciler := snapcast.NewReconciler(zones, clients, adapter, cfg.Clients)
	supervisor := snapcast.NewConnectionSupervisor(
		snapcastAddr(cfg.Services.Snapcast),
		time.Duration(cfg.Services.Snapcast.TimeoutSeconds)*time.Second,
		reconciler,
		reporter,
	)

	radioResolver := media.NewRadioResolver(cfg.Radio)
	var subsonic *media.SubsonicClient
	if cfg.Services.Subsonic.URL != "" {
		subsonic = media.NewSubsonicClient(cfg.Services.Subsonic)
	}
	resolver := media.NewResolver(radioResolver, subsonic)

	zoneManagers := make(map[int]*zone.Manager, len(cfg.Zones))
	for _, zc := range cfg.Zones {
		if !zc.Enabled {
			continue
		}
		zoneManagers[zc.Index] = zone.NewManager(zc.Index, zones, clients, adapter, resolver, reporter, clock.Real{})
	}

	zonePlayers := make(map[int]router.ZonePlayer, len(zoneManagers))
	for idx, zm := range zoneManagers {
		zonePlayers[idx] = zm
	}

	cmdRouter := router.New(zones, clients, zonePlayers, adapter, resolver, reconciler)

	fan := fanout.New(zones, clients, global)

	var mqttAdapter *mqtt.Adapter
	if cfg.Services.MQTT.Broker != "" {
		mqttAdapter = mqtt.New(cfg.Services.MQTT, cfg.Zones, cfg.Clients, cmdRouter, reporter)
	}

	var knxAdapter *knx.Adapter
	if cfg.Services.KNX.Enabled {
		knxAdapter = knx.New(cfg.Services.KNX, cfg.Zones, cfg.Clients, cmdRouter, reporter)
	}

	hub := ws.NewHub(fan)

	sysstatsChecker := func() bool { return supervisor.Current() != nil }
	mqttChecker := func() bool { return mqttAdapter == nil || mqttAdapter.Connected() }
	stats := sysstats.New(global, sysstatsChecker, mqttChecker)

	disc := discovery.New(cfg.System.ApplicationName, cfg.API.Port)

	apiHandler := httpapi.NewRouter(zones, clients, resolver, cmdRouter, resolver, cfg.API.AuthEnabled, cfg.API.APIKeys)
	mux := http.NewServeMux()
	mux.Handle("/hubs/snapdog", hub.Handler())
	mux.Handle("/", apiHandler)

	httpServer := &http.Server{
		Addr:         addrFor(cfg.API.Port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streamed cover art / long-poll-free, but keep open for WS upgrades
		IdleTimeout:  120 * time.Second,
	}

	fan.Seed()

	go supervisor.Run(ctx)
	for _, zm := range zoneManagers {
		go zm.Run(ctx)
	}
	go fan.Run(ctx)
	go hub.Run(ctx)
	go stats.Run(ctx)

	go func() {
		if err := disc.Run(ctx); err != nil {
			slog.Warn("snapdog: mdns discovery failed", "err", err)
		}
	}()

	if mqttAdapter != nil {
		if err := mqttAdapter.Connect(ctx); err != nil {
			reporter.ReportError("mqtt", model.UpstreamUnavailable(err.Error()))
			slog.Error("snapdog: mqtt connect failed", "err", err)
		} else {
			go mqttAdapter.Run(ctx, fan.Subscribe("mqtt"))
		}
	}
	if knxAdapter != nil {
		go knxAdapter.Run(ctx)
		go knxAdapter.RunFanout(ctx, fan.Subscribe("knx"))
	}

	go func() {
		slog.Info("snapdog: http listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("snapdog: http server error", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("snapdog: shutting down")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	if err := httpServer.Shutdown(shutCtx); err != nil {
		slog.Warn("snapdog: http shutdown error", "err", err)
	}

	if mqttAdapter != nil {
		mqttAdapter.Disconnect()
	}
	if c := supervisor.Current(); c != nil {
		c.Close()
	}

	slog.Info("snapdog: shutdown complete")
}

// globalReporter records component errors to GlobalState.LastError,
// satisfying zone.ErrorReporter, snapcast.ErrorReporter, mqtt.ErrorReporter
// and knx.ErrorReporter with one implementation (spec §7).
type globalReporter struct {
	global *store.GlobalStore
}

func (r *globalReporter) ReportError(component string, err *model.AppError) {
	slog.Error("snapdog: component error", "component", component, "err", err)
	r.global.Mutate(func(g *model.GlobalState) error {
		g.LastError = &model.LastError{
			Timestamp: time.Now(),
			Level:     "error",
			Code:      err.Kind,
			Message:   err.Message,
			Component: component,
		}
		return nil
	})
}

func seedZones(zoneConfigs []config.ZoneConfig) []model.Zone {
	zones := make([]model.Zone, 0, len(zoneConfigs))
	for _, zc := range zoneConfigs {
		if !zc.Enabled {
			continue
		}
		zones = append(zones, model.Zone{
			ZoneIndex: zc.Index,
			Name:      zc.Name,
			State:     model.Stopped,
			Volume:    50,
		})
	}
	return zones
}

func seedClients(clientConfigs []config.ClientConfig) []model.Client {
	clients := make([]model.Client, 0, len(clientConfigs))
	for _, cc := range clientConfigs {
		clients = append(clients, model.Client{
			ClientIndex: cc.Index,
			Name:        cc.Name,
			MAC:         cc.MAC,
			ZoneIndex:   cc.DefaultZone,
			Volume:      50,
		})
	}
	return clients
}

func snapcastAddr(cfg config.SnapcastConfig) string {
	return cfg.Host + ":" + strconv.Itoa(cfg.Port)
}

func addrFor(port int) string {
	return ":" + strconv.Itoa(port)
}

func parseLogLevel(name string) slog.Level {
	switch name {
	case "debug", "Debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "Warn", "WARN", "warning", "Warning":
		return slog.LevelWarn
	case "error", "Error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
