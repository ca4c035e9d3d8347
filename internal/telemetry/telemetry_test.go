package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebundler/internal/contentindex"
	sberrors "git.home.luguber.info/inful/sitebundler/internal/errors"
)

func TestNewEvent_PopulatesPayload(t *testing.T) {
	summary := &contentindex.Summary{Entries: 4, Stories: 3, Docs: 1}
	e := NewEvent("build-1", "html", summary, 1500*time.Millisecond)

	require.NotEmpty(t, e.EventID)
	require.Equal(t, "build-1", e.BuildID)
	require.Equal(t, PrecedenceCurrent, e.Precedence)
	require.Equal(t, "html", e.Framework)
	require.Equal(t, summary, e.Index)
	require.Equal(t, int64(1500), e.DurationMS)
	require.False(t, e.Timestamp.IsZero())
}

func TestNewEvent_EventIDsAreUnique(t *testing.T) {
	a := NewEvent("b", "", nil, 0)
	b := NewEvent("b", "", nil, 0)
	require.NotEqual(t, a.EventID, b.EventID)
}

func TestNewNATSNotifier_RejectsMissingURLAndSubject(t *testing.T) {
	for _, args := range [][2]string{{"", "builds"}, {"nats://localhost:4222", ""}} {
		_, err := NewNATSNotifier(args[0], args[1])
		require.Error(t, err)

		var be *sberrors.BundlerError
		require.ErrorAs(t, err, &be)
		require.Equal(t, sberrors.CategoryTelemetry, be.Category)
	}
}

func TestLogNotifier_NotifyNeverFails(t *testing.T) {
	n := LogNotifier{}
	require.NoError(t, n.Notify(context.Background(), NewEvent("b", "html", nil, time.Second)))
	require.NoError(t, n.Close())
}
