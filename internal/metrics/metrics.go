package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/utakatalp/cfb-rankings/internal/league"
)

const namespace = "cfb_rankings"

// Recorder collects the outcome of one rating run. It uses its own registry
// so a batch run exports only its own series.
type Recorder struct {
	reg *prometheus.Registry

	passes    prometheus.Gauge
	converged prometheus.Gauge
	maxChange prometheus.Gauge
	teams     prometheus.Gauge
	topTeams  prometheus.Gauge
	ingested  prometheus.Counter
	skipped   prometheus.Counter
}

func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		passes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "passes",
			Help: "Convergence passes run by the last calculation.",
		}),
		converged: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "converged",
			Help: "1 if the last calculation converged before the iteration cap.",
		}),
		maxChange: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "max_change",
			Help: "Largest rating change in the final pass.",
		}),
		teams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "teams",
			Help: "Teams registered, any division.",
		}),
		topTeams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "top_division_teams",
			Help: "Teams eligible for the ranking.",
		}),
		ingested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "games_ingested_total",
			Help: "Completed games ingested.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "games_skipped_total",
			Help: "Games skipped for a missing team or score.",
		}),
	}
	r.reg.MustRegister(r.passes, r.converged, r.maxChange, r.teams, r.topTeams, r.ingested, r.skipped)
	return r
}

// ObserveLoad records the outcome of System.LoadGames.
func (r *Recorder) ObserveLoad(added, skipped int) {
	r.ingested.Add(float64(added))
	r.skipped.Add(float64(skipped))
}

// ObserveRun records a finished calculation.
func (r *Recorder) ObserveRun(res league.Result, teams, topDivision int) {
	r.passes.Set(float64(res.Passes))
	r.maxChange.Set(res.MaxChange)
	if res.Converged {
		r.converged.Set(1)
	} else {
		r.converged.Set(0)
	}
	r.teams.Set(float64(teams))
	r.topTeams.Set(float64(topDivision))
}

func (r *Recorder) Gatherer() prometheus.Gatherer { return r.reg }

// WriteFile writes the metrics in the text format read by the node exporter
// textfile collector. The file is replaced atomically.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
