package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_WriteSummary_IncludesRecordedSamples(t *testing.T) {
	rec := NewPrometheusRecorder(nil)

	rec.ObserveStageDuration("shell_build", 120*time.Millisecond)
	rec.ObserveBuildDuration(500 * time.Millisecond)
	rec.IncStageResult("shell_build", ResultSuccess)
	rec.IncBuildOutcome(BuildOutcomeSuccess)
	rec.IncTaskResult("index_export", true)
	rec.IncTaskResult("telemetry", false)

	var buf bytes.Buffer
	require.NoError(t, rec.WriteSummary(&buf))
	out := buf.String()

	require.Contains(t, out, `sitebundler_stage_duration_seconds{stage="shell_build"} count=1`)
	require.Contains(t, out, "sitebundler_build_duration_seconds count=1 sum=0.5s")
	require.Contains(t, out, `sitebundler_stage_results_total{result="success",stage="shell_build"} 1`)
	require.Contains(t, out, `sitebundler_build_outcomes_total{outcome="success"} 1`)
	require.Contains(t, out, `sitebundler_effect_task_results_total{result="failed",task="telemetry"} 1`)
}

func TestPrometheusRecorder_WriteSummary_NilRecorderIsNoop(t *testing.T) {
	var rec *PrometheusRecorder
	var buf bytes.Buffer
	require.NoError(t, rec.WriteSummary(&buf))
	require.Empty(t, buf.String())
}

func TestPrometheusRecorder_Registry_ServesCollectedMetrics(t *testing.T) {
	rec := NewPrometheusRecorder(nil)
	rec.IncBuildOutcome(BuildOutcomeFailed)

	require.NotNil(t, rec.Registry())
	families, err := rec.Registry().Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	require.Contains(t, names, "sitebundler_build_outcomes_total")
}
