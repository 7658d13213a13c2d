// Package metrics collects batch counters for the commands on a private
// Prometheus registry and writes them in the text exposition format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cwbudde/algo-nirspec/rv"
	"github.com/cwbudde/algo-nirspec/template"
)

const namespace = "nirspec"

// Recorder holds the metrics of one command run.
type Recorder struct {
	reg *prometheus.Registry

	templatesBuilt *prometheus.CounterVec
	templatesEmpty *prometheus.CounterVec
	membersSkipped *prometheus.CounterVec
	trials         prometheus.Counter
	trialsFailed   prometheus.Counter
	estimates      *prometheus.CounterVec
	rvDuration     prometheus.Histogram
}

// New returns a Recorder whose series carry the given command label.
func New(command string) *Recorder {
	labels := prometheus.Labels{"command": command}

	r := &Recorder{
		reg: prometheus.NewRegistry(),
		templatesBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "templates_built_total",
			Help:        "Templates produced, by band and gravity class.",
			ConstLabels: labels,
		}, []string{"band", "gravity"}),
		templatesEmpty: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "templates_empty_total",
			Help:        "Template requests with too few eligible members.",
			ConstLabels: labels,
		}, []string{"band", "gravity"}),
		membersSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "template_members_skipped_total",
			Help:        "Members left out of a template, by reason.",
			ConstLabels: labels,
		}, []string{"reason"}),
		trials: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "rv_trials_total",
			Help:        "Monte-Carlo trials run.",
			ConstLabels: labels,
		}),
		trialsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "rv_trials_failed_total",
			Help:        "Monte-Carlo trials whose peak fit was rejected.",
			ConstLabels: labels,
		}),
		estimates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "rv_estimates_total",
			Help:        "Radial velocity estimates, by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		rvDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "rv_estimate_duration_seconds",
			Help:        "Wall time of one radial velocity estimate.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}

	r.reg.MustRegister(r.templatesBuilt, r.templatesEmpty, r.membersSkipped,
		r.trials, r.trialsFailed, r.estimates, r.rvDuration)

	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Template records the outcome of one template.Build call.
func (r *Recorder) Template(t template.Template) {
	grav := t.Key.Gravity.String()
	if t.Empty() {
		r.templatesEmpty.WithLabelValues(t.Band, grav).Inc()
	} else {
		r.templatesBuilt.WithLabelValues(t.Band, grav).Inc()
	}

	for _, s := range t.Skipped {
		r.membersSkipped.WithLabelValues(s.Reason).Inc()
	}
}

// Estimate records one rv.Estimate call. A failed estimate passes a zero
// Result and its error.
func (r *Recorder) Estimate(res rv.Result, elapsed time.Duration, err error) {
	r.rvDuration.Observe(elapsed.Seconds())

	if err != nil {
		r.estimates.WithLabelValues("error").Inc()
		return
	}

	r.estimates.WithLabelValues("ok").Inc()
	r.trials.Add(float64(res.Trials))
	r.trialsFailed.Add(float64(res.Failed))
}

// WriteFile writes the metrics to path atomically, for the node exporter
// textfile collector.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
