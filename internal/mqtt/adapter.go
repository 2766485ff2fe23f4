package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/metaneutrons/snapdog2-sub015/internal/config"
	"github.com/metaneutrons/snapdog2-sub015/internal/fanout"
	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

// Dispatcher is the router surface the adapter submits translated commands
// to.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd model.Command) *model.AppError
}

// ErrorReporter records adapter-level parse failures (spec §4.6:
// "Unparseable payloads produce SYSTEM_ERROR{ code: MQTT_PARSE } and are
// dropped").
type ErrorReporter interface {
	ReportError(component string, err *model.AppError)
}

// Adapter is the MQTT control surface: subscribes to every configured
// control topic, translates inbound payloads into commands, and republishes
// every status event with retain=true.
type Adapter struct {
	client    paho.Client
	baseTopic string
	dispatch  Dispatcher
	errs      ErrorReporter

	zoneTopics   map[int]ZoneTopics
	clientTopics map[int]ClientTopics

	statusTopicIndex map[string]string // "entity:kind:index" -> topic
}

// New builds the adapter and its paho client (not yet connected).
func New(cfg config.MQTTConfig, zones []config.ZoneConfig, clients []config.ClientConfig, dispatch Dispatcher, errs ErrorReporter) *Adapter {
	a := &Adapter{
		baseTopic:        cfg.BaseTopic,
		dispatch:         dispatch,
		errs:             errs,
		zoneTopics:       make(map[int]ZoneTopics, len(zones)),
		clientTopics:     make(map[int]ClientTopics, len(clients)),
		statusTopicIndex: make(map[string]string),
	}
	for _, zc := range zones {
		zt := BuildZoneTopics(cfg.BaseTopic, zc)
		a.zoneTopics[zc.Index] = zt
		for key, topic := range zt.Status {
			a.statusTopicIndex[statusKey(model.EntityZone, zoneStatusKind(key), zc.Index)] = topic
		}
	}
	for _, cc := range clients {
		ct := BuildClientTopics(cfg.BaseTopic, cc)
		a.clientTopics[cc.Index] = ct
		for key, topic := range ct.Status {
			a.statusTopicIndex[statusKey(model.EntityClient, clientStatusKind(key), cc.Index)] = topic
		}
	}
	a.statusTopicIndex[statusKey(model.EntityGlobal, model.StatusSystem, 0)] = SystemStatusTopic(cfg.BaseTopic)

	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port)).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetWill(SystemStatusTopic(cfg.BaseTopic), "offline", 1, true).
		SetAutoReconnect(true).
		SetConnectRetry(true)
	opts.OnConnect = func(c paho.Client) { a.onConnect(c) }

	a.client = paho.NewClient(opts)
	return a
}

func (a *Adapter) onConnect(c paho.Client) {
	slog.Info("mqtt: connected", "broker", c.OptionsReader().Servers())
	c.Publish(SystemStatusTopic(a.baseTopic), 1, true, "online")

	for zoneIndex, zt := range a.zoneTopics {
		for key, topic := range zt.Control {
			key, zoneIndex := key, zoneIndex
			c.Subscribe(topic, 1, func(_ paho.Client, m paho.Message) {
				a.handleZoneControl(zoneIndex, key, string(m.Payload()))
			})
		}
	}
	for clientIndex, ct := range a.clientTopics {
		for key, topic := range ct.Control {
			key, clientIndex := key, clientIndex
			c.Subscribe(topic, 1, func(_ paho.Client, m paho.Message) {
				a.handleClientControl(clientIndex, key, string(m.Payload()))
			})
		}
	}
}

// Connect opens the broker connection; blocks until connect completes or
// ctx is cancelled.
func (a *Adapter) Connect(ctx context.Context) error {
	token := a.client.Connect()
	done := make(chan struct{})
	go func() { token.Wait(); close(done) }()
	select {
	case <-done:
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect publishes offline and disconnects cleanly (spec §4.6: "on
// clean shutdown publish online→offline explicitly").
func (a *Adapter) Disconnect() {
	a.client.Publish(SystemStatusTopic(a.baseTopic), 1, true, "offline")
	a.client.Disconnect(250)
}

// Connected reports whether the broker connection is currently up, for
// GlobalState.Online derivation.
func (a *Adapter) Connected() bool {
	return a.client != nil && a.client.IsConnected()
}

func (a *Adapter) handleZoneControl(zoneIndex int, key, payload string) {
	cmd, err := zoneCommandFromTopic(zoneIndex, key, payload)
	if err != nil {
		a.reportParseError(fmt.Sprintf("zone/%d/%s", zoneIndex, key), err)
		return
	}
	if aerr := a.dispatch.Dispatch(context.Background(), cmd); aerr != nil {
		slog.Warn("mqtt: command failed", "zone", zoneIndex, "key", key, "err", aerr)
	}
}

func (a *Adapter) handleClientControl(clientIndex int, key, payload string) {
	cmd, err := clientCommandFromTopic(clientIndex, key, payload)
	if err != nil {
		a.reportParseError(fmt.Sprintf("client/%d/%s", clientIndex, key), err)
		return
	}
	if aerr := a.dispatch.Dispatch(context.Background(), cmd); aerr != nil {
		slog.Warn("mqtt: command failed", "client", clientIndex, "key", key, "err", aerr)
	}
}

// reportParseError records a dropped, unparseable inbound payload as a
// SYSTEM_ERROR of kind VALIDATION_ERROR whose message starts with
// "MQTT_PARSE:" (spec §4.6).
func (a *Adapter) reportParseError(topic string, err error) {
	slog.Warn("mqtt: dropping unparseable payload", "topic", topic, "err", err)
	if a.errs != nil {
		a.errs.ReportError("mqtt", model.NewErrorf(model.ErrValidation, "MQTT_PARSE: %s: %v", topic, err))
	}
}

// PublishStatus publishes one fan-out event to its corresponding status
// topic with retain=true (spec §4.6). Scalars are stringified; composite
// kinds are JSON.
func (a *Adapter) PublishStatus(ev fanout.StatusEvent) {
	topic, ok := a.statusTopicIndex[statusKey(ev.Entity, ev.Kind, ev.TargetIndex)]
	if !ok {
		return
	}
	a.client.Publish(topic, 1, true, stringifyPayload(ev.Payload))
}

// Run drains the fan-out subscription until ctx is cancelled.
func (a *Adapter) Run(ctx context.Context, statusCh <-chan fanout.StatusEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-statusCh:
			if !ok {
				return
			}
			a.PublishStatus(ev)
		}
	}
}

func stringifyPayload(payload interface{}) string {
	switch v := payload.(type) {
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case string:
		return v
	default:
		b, err := json.Marshal(payload)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func statusKey(entity model.EntityKind, kind model.StatusKind, index int) string {
	return fmt.Sprintf("%s:%s:%d", entity, kind, index)
}

func zoneStatusKind(key string) model.StatusKind {
	switch key {
	case "volume":
		return model.StatusVolume
	case "mute":
		return model.StatusMute
	case "state":
		return model.StatusPlaybackState
	case "metadata":
		return model.StatusTrackMetadata
	case "progress":
		return model.StatusTrackProgress
	case "repeat", "shuffle", "playlist", "track":
		return model.StatusPlaylist
	}
	return model.StatusKind(key)
}

func clientStatusKind(key string) model.StatusKind {
	switch key {
	case "volume":
		return model.StatusClientVolume
	case "mute":
		return model.StatusClientMute
	case "latency":
		return model.StatusClientLatency
	case "zone":
		return model.StatusClientZone
	case "connected":
		return model.StatusClientConnected
	}
	return model.StatusKind(key)
}
