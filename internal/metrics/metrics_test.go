package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDocumentsObserver(t *testing.T) {
	ok := DocumentsGenerated.WithLabelValues("certificate", "success")
	failed := DocumentsGenerated.WithLabelValues("certificate", "error")
	before, beforeFailed := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	var obs Documents
	obs.ObserveGeneration("certificate", 10*time.Millisecond, nil)
	obs.ObserveGeneration("certificate", time.Millisecond, errors.New("boom"))

	assert.Equal(t, before+1, testutil.ToFloat64(ok))
	assert.Equal(t, beforeFailed+1, testutil.ToFloat64(failed))
}

func TestRecordSave(t *testing.T) {
	c := RecordsSaved.WithLabelValues("bmr", "create", "success")
	before := testutil.ToFloat64(c)
	RecordSave("bmr", "create", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
