package metrics

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the collector's registry in the Prometheus exposition
// format, negotiating OpenMetrics when the scraper asks for it. A metric
// that fails to gather is skipped rather than failing the scrape.
//
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
		ErrorLog:          promErrorLog{},
	})
}

// promErrorLog forwards gather errors to slog.
type promErrorLog struct{}

func (promErrorLog) Println(v ...interface{}) {
	slog.Warn("metrics gather error", "error", fmt.Sprint(v...))
}
