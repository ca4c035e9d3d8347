package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	prom "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Registry exposes the recorder's registry so callers can serve or dump the
// collected metrics.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

// WriteSummary gathers all collected metrics and writes one sample per line.
// Counters print their value, histograms their observation count and sum.
func (p *PrometheusRecorder) WriteSummary(w io.Writer) error {
	if p == nil || p.registry == nil {
		return nil
	}
	families, err := p.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName() + formatLabels(m.GetLabel())
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s count=%d sum=%gs\n", name, h.GetSampleCount(), h.GetSampleSum())
			case m.GetGauge() != nil:
				fmt.Fprintf(w, "%s %g\n", name, m.GetGauge().GetValue())
			}
		}
	}
	return nil
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
