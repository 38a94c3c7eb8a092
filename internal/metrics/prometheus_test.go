package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGetReturnsSameRegistry(t *testing.T) {
	a := Get()
	b := Get()
	assert.Same(t, a, b, "registry should be a singleton")
}

func TestRecordCommit(t *testing.T) {
	r := Get()

	before := testutil.ToFloat64(r.CommitsTotal.WithLabelValues("eth0", "ok"))
	r.RecordCommit("eth0", true)
	assert.Equal(t, before+1, testutil.ToFloat64(r.CommitsTotal.WithLabelValues("eth0", "ok")))

	beforeErr := testutil.ToFloat64(r.CommitsTotal.WithLabelValues("eth0", "error"))
	r.RecordCommit("eth0", false)
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(r.CommitsTotal.WithLabelValues("eth0", "error")))
}

func TestRecordReplace(t *testing.T) {
	r := Get()

	before := testutil.ToFloat64(r.ReplaceChangesTotal.WithLabelValues("wlan0", "minor"))
	r.RecordReplace("wlan0", "minor")
	assert.Equal(t, before+1, testutil.ToFloat64(r.ReplaceChangesTotal.WithLabelValues("wlan0", "minor")))
}

func TestSetJournalEntries(t *testing.T) {
	r := Get()
	r.SetJournalEntries(42)
	assert.Equal(t, 42.0, testutil.ToFloat64(r.JournalEntries))
}
