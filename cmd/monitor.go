package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grimm.is/floe/internal/events"
	"grimm.is/floe/internal/health"
	"grimm.is/floe/internal/ipconfig"
	"grimm.is/floe/internal/logging"
	"grimm.is/floe/internal/metrics"
)

// RunMonitor watches one interface until interrupted. Every interval the
// live state is recaptured and replaced onto the held store; changes made
// behind floe's back surface as field-change events and a classification
// log line. The configured gateway is probed on the same cadence. With
// metricsListen set, a Prometheus endpoint is served on /metrics.
func RunMonitor(ifname string, interval time.Duration, metricsListen string) error {
	log := logging.WithComponent("monitor")

	p, ifindex, err := newPlatform(false, ifname)
	if err != nil {
		return err
	}

	store := ipconfig.Capture(p, ifindex, true)
	if store == nil {
		return fmt.Errorf("interface %s is enslaved; its master owns the IPv4 state", ifname)
	}
	metrics.Get().RecordCapture(ifname)

	hub := events.NewHub()
	store.SetHub(hub)
	prober := health.NewProber(hub, log)

	sub := hub.Subscribe(64)
	defer hub.Unsubscribe(sub)
	go func() {
		for e := range sub {
			payload, _ := json.Marshal(e.Data)
			log.Info("event", "type", string(e.Type), "source", e.Source, "data", string(payload))
		}
	}()

	var srv *http.Server
	if metricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv = &http.Server{Addr: metricsListen, Handler: mux}
		go func() {
			log.Info("metrics endpoint listening", "addr", metricsListen)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics endpoint failed", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("monitoring interface", "interface", ifname, "interval", interval.String())

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			if srv != nil {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(sctx)
			}
			return nil

		case <-ticker.C:
			captured := ipconfig.Capture(p, ifindex, true)
			metrics.Get().RecordCapture(ifname)
			if captured == nil {
				log.Warn("interface became enslaved", "interface", ifname)
				continue
			}

			changed, relevant := store.Replace(captured)
			if changed {
				class := changeClass(changed, relevant)
				log.Info("live state changed", "interface", ifname, "change", class)
				metrics.Get().RecordReplace(ifname, class)
			}

			prober.Probe(ifname, store.Gateway())
		}
	}
}
