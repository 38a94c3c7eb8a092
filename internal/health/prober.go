// Package health probes gateway reachability for committed
// configurations. The monitor loop uses it to notice when an interface
// has a default gateway that stopped answering.
package health

import (
	"context"
	"fmt"
	"net"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"grimm.is/floe/internal/events"
	"grimm.is/floe/internal/logging"
	"grimm.is/floe/internal/metrics"
)

// CheckPingFunc performs a single reachability probe. Tests override
// this to avoid real ICMP traffic.
var CheckPingFunc = func(ip string) error {
	pinger, err := probing.NewPinger(ip)
	if err != nil {
		return fmt.Errorf("failed to create pinger: %w", err)
	}

	pinger.Count = 1
	pinger.Timeout = 1 * time.Second
	pinger.SetPrivileged(false)

	err = pinger.Run()
	if err != nil {
		return err
	}

	if pinger.Statistics().PacketsRecv == 0 {
		return fmt.Errorf("packet loss")
	}
	return nil
}

// Prober checks whether committed gateways answer probes and publishes
// the results on the event hub.
type Prober struct {
	hub *events.Hub
	log *logging.Logger
}

// NewProber creates a gateway prober. A nil hub disables event
// publication; a nil logger falls back to the default.
func NewProber(hub *events.Hub, log *logging.Logger) *Prober {
	if log == nil {
		log = logging.Default()
	}
	return &Prober{hub: hub, log: log.WithComponent("health")}
}

// Probe checks one gateway and reports the outcome. An interface with
// no gateway is treated as reachable since there is nothing to lose.
func (p *Prober) Probe(ifname string, gateway net.IP) bool {
	if gateway == nil || gateway.IsUnspecified() {
		return true
	}

	err := CheckPingFunc(gateway.String())
	if err != nil {
		p.log.Warn("Gateway unreachable", "interface", ifname, "gateway", gateway.String(), "error", err)
		metrics.Get().RecordProbeFailure(ifname)
		if p.hub != nil {
			p.hub.EmitGatewayHealth(ifname, gateway.String(), false, err.Error())
		}
		return false
	}

	p.log.Debug("Gateway reachable", "interface", ifname, "gateway", gateway.String())
	if p.hub != nil {
		p.hub.EmitGatewayHealth(ifname, gateway.String(), true, "")
	}
	return true
}

// Watch probes the gateway on a fixed interval until the context is
// cancelled. The first probe fires immediately.
func (p *Prober) Watch(ctx context.Context, ifname string, gateway net.IP, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	p.Probe(ifname, gateway)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Probe(ifname, gateway)
		}
	}
}
