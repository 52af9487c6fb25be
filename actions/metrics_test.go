package actions

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/thesecretlab-dev/zkledger/storage"
)

func TestMetricsRecordsOutcomes(t *testing.T) {
	require := require.New(t)

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(DefaultMetricsMaxAccounts, reg)
	require.NoError(err)

	programID := ids.GenerateTestID()
	h := NewCounterHandler(WithMetrics(m))

	acct := newAccount(programID, []byte{0, 0, 0, 1})
	require.NoError(h.Handle(CallerContext{ProgramID: programID}, acct, nil))
	require.ErrorIs(h.Handle(CallerContext{ProgramID: ids.GenerateTestID()}, acct, nil), ErrNotAuthorized)
	require.ErrorIs(h.ProcessInstruction(programID, []*storage.Account{}, nil), ErrMissingAccount)

	snap := m.Snapshot(0, true)
	require.Equal(uint64(3), snap.Summary.TotalInvocations)
	require.Equal(uint64(1), snap.Summary.TotalCommitted)
	require.Equal(uint64(2), snap.Summary.TotalRejected)
	require.Equal(uint64(4), snap.Summary.TotalBytesWritten)
	require.Equal(uint64(1), snap.Summary.RejectedByCode["NotAuthorized"])
	require.Equal(uint64(1), snap.Summary.RejectedByCode["MissingAccount"])
	require.Len(snap.Accounts, 2)

	a := snap.Accounts[0]
	require.Equal(acct.Address.String(), a.Address)
	require.Equal("counter", a.Program)
	require.Equal(uint64(2), a.Invocations)
	require.Equal(uint64(1), a.Committed)
	require.Equal("NotAuthorized", a.LastCode)
	require.NotEmpty(a.LastError)

	require.InDelta(1, testutil.ToFloat64(m.invocations.WithLabelValues("counter", "OK")), 0)
	require.InDelta(1, testutil.ToFloat64(m.invocations.WithLabelValues("counter", "NotAuthorized")), 0)
	require.InDelta(4, testutil.ToFloat64(m.bytesWritten), 0)
}

func TestMetricsEvictsOldestAccount(t *testing.T) {
	require := require.New(t)

	m, err := NewMetrics(2, nil)
	require.NoError(err)

	addrs := []ids.ID{ids.GenerateTestID(), ids.GenerateTestID(), ids.GenerateTestID()}
	for _, addr := range addrs {
		m.record("record", addr, 1, 0, nil)
	}

	snap := m.Snapshot(0, true)
	require.Equal(uint64(3), snap.Summary.TotalAccountsObserved)
	require.Len(snap.Accounts, 2)
	require.Equal(addrs[1].String(), snap.Accounts[0].Address)
	require.Equal(addrs[2].String(), snap.Accounts[1].Address)

	snap = m.Snapshot(1, true)
	require.Len(snap.Accounts, 1)
	require.Equal(addrs[2].String(), snap.Accounts[0].Address)

	m.Reset()
	require.Zero(m.Snapshot(0, true).Summary.TotalInvocations)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.record("counter", ids.Empty, 0, 0, nil)
	m.Reset()
	require.Zero(t, m.Snapshot(0, true).Summary.TotalInvocations)
}

func TestMetricsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(0, reg)
	require.NoError(t, err)
	_, err = NewMetrics(0, reg)
	require.Error(t, err)
}
