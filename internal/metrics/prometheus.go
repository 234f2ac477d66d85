package metrics

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using Prometheus client library.
// All methods are non-blocking and fire-and-forget.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	// Scanner metrics
	scansTotal        prometheus.Counter
	scanErrorsTotal   prometheus.Counter
	scansSkippedTotal prometheus.Counter
	remindersMatched  prometheus.Counter
	scanDuration      prometheus.Histogram

	// Mailer metrics
	mailAttemptsTotal *prometheus.CounterVec
	mailOutcomesTotal *prometheus.CounterVec
	sendDuration      prometheus.Histogram
	eventsInFlight    prometheus.Gauge

	// EventBus metrics
	bufferSize       prometheus.Gauge
	bufferCapacity   prometheus.Gauge
	bufferSaturation prometheus.Gauge
	emitErrorsTotal  prometheus.Counter
}

// NewPrometheusSink creates a new Prometheus metrics sink.
// If registration fails, it logs a warning and returns a functional sink.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{}
	s.initScannerMetrics(reg)
	s.initMailerMetrics(reg)
	s.initEventBusMetrics(reg)
	return s
}

func (s *PrometheusSink) initScannerMetrics(reg prometheus.Registerer) {
	s.scansTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jobtracker_scanner_scans_total",
		Help: "Total number of reminder scans run.",
	})
	s.scanErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jobtracker_scanner_scan_errors_total",
		Help: "Total number of reminder scans that failed.",
	})
	s.scansSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jobtracker_scanner_scans_skipped_total",
		Help: "Total number of scans skipped because one was already running.",
	})
	s.remindersMatched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jobtracker_scanner_reminders_matched_total",
		Help: "Total number of applications matched by reminder scans.",
	})
	s.scanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "jobtracker_scanner_scan_duration_seconds",
		Help:    "Duration of each reminder scan in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	})

	s.register(reg, s.scansTotal, "jobtracker_scanner_scans_total")
	s.register(reg, s.scanErrorsTotal, "jobtracker_scanner_scan_errors_total")
	s.register(reg, s.scansSkippedTotal, "jobtracker_scanner_scans_skipped_total")
	s.register(reg, s.remindersMatched, "jobtracker_scanner_reminders_matched_total")
	s.register(reg, s.scanDuration, "jobtracker_scanner_scan_duration_seconds")
}

func (s *PrometheusSink) initMailerMetrics(reg prometheus.Registerer) {
	s.mailAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobtracker_mailer_attempts_total",
		Help: "Total number of reminder mail send attempts.",
	}, []string{"status_class"})

	s.mailOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobtracker_mailer_outcomes_total",
		Help: "Total number of final mail outcomes per reminder event.",
	}, []string{"outcome"})

	s.sendDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "jobtracker_mailer_send_duration_seconds",
		Help:    "SMTP send latency in seconds.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	s.eventsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jobtracker_mailer_events_in_flight",
		Help: "Number of reminder events currently being processed.",
	})

	s.register(reg, s.mailAttemptsTotal, "jobtracker_mailer_attempts_total")
	s.register(reg, s.mailOutcomesTotal, "jobtracker_mailer_outcomes_total")
	s.register(reg, s.sendDuration, "jobtracker_mailer_send_duration_seconds")
	s.register(reg, s.eventsInFlight, "jobtracker_mailer_events_in_flight")
}

func (s *PrometheusSink) initEventBusMetrics(reg prometheus.Registerer) {
	s.bufferSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jobtracker_eventbus_buffer_size",
		Help: "Current number of events in the event bus buffer.",
	})
	s.bufferCapacity = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jobtracker_eventbus_buffer_capacity",
		Help: "Configured capacity of the event bus buffer.",
	})
	s.bufferSaturation = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jobtracker_eventbus_buffer_saturation",
		Help: "Event bus buffer fill ratio between 0 and 1.",
	})
	s.emitErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jobtracker_eventbus_emit_errors_total",
		Help: "Total number of emit errors (buffer full).",
	})

	s.register(reg, s.bufferSize, "jobtracker_eventbus_buffer_size")
	s.register(reg, s.bufferCapacity, "jobtracker_eventbus_buffer_capacity")
	s.register(reg, s.bufferSaturation, "jobtracker_eventbus_buffer_saturation")
	s.register(reg, s.emitErrorsTotal, "jobtracker_eventbus_emit_errors_total")
}

// register attempts to register a collector, logging any errors without propagating them.
func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		log.Printf("metrics: failed to register %s: %v", name, err)
	}
}

// Scanner metrics implementation

func (s *PrometheusSink) ScanStarted() {
	s.scansTotal.Inc()
}

func (s *PrometheusSink) ScanCompleted(duration time.Duration, matched int, err error) {
	s.scanDuration.Observe(duration.Seconds())
	s.remindersMatched.Add(float64(matched))
	if err != nil {
		s.scanErrorsTotal.Inc()
	}
}

func (s *PrometheusSink) ScanSkipped() {
	s.scansSkippedTotal.Inc()
}

// Mailer metrics implementation

func (s *PrometheusSink) MailAttemptCompleted(statusClass string, duration time.Duration) {
	s.mailAttemptsTotal.WithLabelValues(statusClass).Inc()
	s.sendDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) MailOutcome(outcome string) {
	s.mailOutcomesTotal.WithLabelValues(outcome).Inc()
}

func (s *PrometheusSink) EventsInFlightIncr() {
	s.eventsInFlight.Inc()
}

func (s *PrometheusSink) EventsInFlightDecr() {
	s.eventsInFlight.Dec()
}

// EventBus metrics implementation

func (s *PrometheusSink) BufferSizeUpdate(size int) {
	s.bufferSize.Set(float64(size))
}

func (s *PrometheusSink) BufferCapacitySet(capacity int) {
	s.bufferCapacity.Set(float64(capacity))
}

func (s *PrometheusSink) BufferSaturationUpdate(saturation float64) {
	s.bufferSaturation.Set(saturation)
}

func (s *PrometheusSink) EmitError() {
	s.emitErrorsTotal.Inc()
}
