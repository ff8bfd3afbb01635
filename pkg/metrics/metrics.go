package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register adds collectors to the default registry. Collectors that are
// already registered are skipped, so Init functions are safe to call twice.
func Register(cs ...prometheus.Collector) error {
	var errs []error
	for _, c := range cs {
		err := prometheus.Register(c)
		var already prometheus.AlreadyRegisteredError
		if err != nil && !errors.As(err, &already) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Init registers the build info collector.
func Init(version string) error {
	return Register(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "app_build_info",
			Help:        "Always 1; labels carry the running version.",
			ConstLabels: prometheus.Labels{"version": version},
		}, func() float64 { return 1 }),
		collectors.NewBuildInfoCollector(),
	)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
