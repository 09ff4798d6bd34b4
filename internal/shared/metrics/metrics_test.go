package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	m := New("test", prometheus.NewRegistry())

	m.RecordHTTPRequest("GET", "/api/v1/invites/:invite_id", 200, 10*time.Millisecond)
	m.RecordOperation("add_member", nil)
	m.RecordOperation("add_member", errors.New("x"))
	m.RecordOperation("add_member", nil)
	m.RecordRosterConflict()
	m.RecordInviteMail(nil)
	m.RecordInviteMail(errors.New("smtp down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/invites/:invite_id", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MembershipOpsTotal.WithLabelValues("add_member", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MembershipOpsTotal.WithLabelValues("add_member", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RosterConflictsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InviteMailsTotal.WithLabelValues("failed")))
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New("", prometheus.NewRegistry())
		New("", prometheus.NewRegistry())
	})
}
