package validator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
)

// WriteMetrics writes the outcome of a run to path in the node_exporter textfile format.
func WriteMetrics(path, slug string, res Result) error {
	reg := prometheus.NewRegistry()

	checkPassed := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "deploykit",
		Name:      "check_passed",
		Help:      "Whether a validation check passed (1) or failed (0).",
	}, []string{"slug", "check", "critical"})
	issues := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "deploykit",
		Name:      "validation_issues",
		Help:      "Number of issues reported by the last validation run.",
	}, []string{"slug"})
	success := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "deploykit",
		Name:      "validation_success",
		Help:      "Whether the last validation run passed every check.",
	}, []string{"slug"})
	reg.MustRegister(checkPassed, issues, success)

	for _, c := range res.Checks {
		checkPassed.WithLabelValues(slug, c.Name, boolLabel(c.Critical)).Set(boolValue(c.Passed))
	}
	issues.WithLabelValues(slug).Set(float64(len(res.Issues)))
	success.WithLabelValues(slug).Set(boolValue(res.Success))

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return eris.Wrapf(err, "failed to write metrics to %q", path)
	}
	return nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
