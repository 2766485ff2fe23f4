// Package discovery advertises SnapDog's HTTP API on the LAN via mDNS, so
// control surfaces (mobile clients, a KNX commissioning tool) can find it
// without static configuration. Adapted from the teacher's
// internal/zeroconf: same Register/Shutdown-on-ctx-cancel shape, generalized
// from the AmpliPi web UI's "_http._tcp" advertisement to SnapDog's own
// service type and TXT payload.
package discovery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/grandcat/zeroconf"

	"github.com/metaneutrons/snapdog2-sub015/internal/buildinfo"
)

const serviceType = "_snapdog._tcp"

// Service manages mDNS service registration for the SnapDog HTTP API.
type Service struct {
	name   string
	port   int
	server *zeroconf.Server
}

// New creates a Service that will advertise on the given port under
// instance name (typically the hostname).
func New(name string, port int) *Service {
	return &Service{name: name, port: port}
}

// Run registers the mDNS service and blocks until ctx is cancelled, then
// unregisters cleanly.
func (s *Service) Run(ctx context.Context) error {
	txt := []string{
		"version=" + buildinfo.Version(),
		"buildTimestamp=" + buildinfo.BuildTimestamp(),
	}

	server, err := zeroconf.Register(s.name, serviceType, "local.", s.port, txt, nil)
	if err != nil {
		return fmt.Errorf("discovery: register: %w", err)
	}
	s.server = server
	slog.Info("discovery: advertising SnapDog API", "name", s.name, "port", s.port, "txt", txt)

	<-ctx.Done()

	server.Shutdown()
	slog.Info("discovery: mDNS service unregistered")
	return nil
}
