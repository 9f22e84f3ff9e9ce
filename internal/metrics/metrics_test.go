package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	beforePosts := testutil.ToFloat64(postsTotal.WithLabelValues("album"))
	RecordPost("album")
	assert.Equal(t, beforePosts+1, testutil.ToFloat64(postsTotal.WithLabelValues("album")))

	beforeSkips := testutil.ToFloat64(accountsSkipped.WithLabelValues(SkipReasonEmptyCatalog))
	RecordSkip(SkipReasonEmptyCatalog)
	assert.Equal(t, beforeSkips+1, testutil.ToFloat64(accountsSkipped.WithLabelValues(SkipReasonEmptyCatalog)))

	beforeDownloads := testutil.ToFloat64(downloadFailures)
	RecordDownloadFailure()
	assert.Equal(t, beforeDownloads+1, testutil.ToFloat64(downloadFailures))

	beforeCycles := testutil.ToFloat64(cyclesTotal.WithLabelValues(CycleResultOK))
	RecordCycle(CycleResultOK, 3*time.Second)
	assert.Equal(t, beforeCycles+1, testutil.ToFloat64(cyclesTotal.WithLabelValues(CycleResultOK)))
	assert.Equal(t, 1, testutil.CollectAndCount(cycleDuration))
}
