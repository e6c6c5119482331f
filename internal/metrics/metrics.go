// Package metrics holds the Prometheus collectors for scraping and parsing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fitmenu"

// Metrics owns its registry so tests and multiple servers never collide on
// the global default registerer.
type Metrics struct {
	Registry *prometheus.Registry

	ScrapesTotal   *prometheus.CounterVec
	ScrapeDuration prometheus.Histogram
	FoodsParsed    prometheus.Counter
	MenuCalories   prometheus.Gauge
	MenuProteins   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ScrapesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scrape",
				Name:      "total",
				Help:      "Menu scrapes by outcome (ok or the failure kind)",
			},
			[]string{"result"},
		),
		ScrapeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "scrape",
				Name:      "duration_seconds",
				Help:      "Time to fetch and parse one menu",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
		FoodsParsed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "parse",
				Name:      "foods_total",
				Help:      "Food records emitted by the menu parser",
			},
		),
		MenuCalories: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "menu",
				Name:      "calories",
				Help:      "Calories of the last scraped menu before supplements",
			},
		),
		MenuProteins: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "menu",
				Name:      "proteins_grams",
				Help:      "Proteins of the last scraped menu before supplements",
			},
		),
	}
	m.Registry.MustRegister(
		m.ScrapesTotal,
		m.ScrapeDuration,
		m.FoodsParsed,
		m.MenuCalories,
		m.MenuProteins,
	)
	return m
}

// ObserveScrape records one scrape. result is "ok" or a failure kind.
func (m *Metrics) ObserveScrape(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ScrapesTotal.WithLabelValues(result).Inc()
	m.ScrapeDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveMenu(foods int, calories, proteins uint32) {
	if m == nil {
		return
	}
	m.FoodsParsed.Add(float64(foods))
	m.MenuCalories.Set(float64(calories))
	m.MenuProteins.Set(float64(proteins))
}
