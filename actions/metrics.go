package actions

import (
	"errors"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultMetricsMaxAccounts = 10_000

type AccountMetrics struct {
	Address string `json:"address"`
	Program string `json:"program"`

	Invocations uint64 `json:"invocations"`
	Committed   uint64 `json:"committed"`
	Rejected    uint64 `json:"rejected"`

	BytesWritten uint64 `json:"bytes_written"`
	ExecUs       uint64 `json:"exec_us"`

	LastInvokedAtMs int64  `json:"last_invoked_at_ms"`
	LastCode        string `json:"last_code"`
	LastError       string `json:"last_error,omitempty"`
}

type MetricsSummary struct {
	TotalAccountsObserved uint64            `json:"total_accounts_observed"`
	TotalInvocations      uint64            `json:"total_invocations"`
	TotalCommitted        uint64            `json:"total_committed"`
	TotalRejected         uint64            `json:"total_rejected"`
	TotalBytesWritten     uint64            `json:"total_bytes_written"`
	RejectedByCode        map[string]uint64 `json:"rejected_by_code,omitempty"`
}

type MetricsSnapshot struct {
	GeneratedAtMs int64            `json:"generated_at_ms"`
	Summary       MetricsSummary   `json:"summary"`
	Accounts      []AccountMetrics `json:"accounts,omitempty"`
}

// Metrics tracks invocation outcomes per account. The per-account table is
// bounded; the oldest account is evicted first. A nil *Metrics discards
// everything.
type Metrics struct {
	mu          sync.Mutex
	maxAccounts int
	accounts    map[ids.ID]*AccountMetrics
	order       []ids.ID
	summary     MetricsSummary

	invocations  *prometheus.CounterVec
	bytesWritten prometheus.Counter
}

// NewMetrics creates a collector and registers its counters with reg when
// reg is non-nil.
func NewMetrics(maxAccounts int, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		maxAccounts: maxAccounts,
		accounts:    make(map[ids.ID]*AccountMetrics, 1024),
		order:       make([]ids.ID, 0, 1024),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zkledger",
			Name:      "invocations",
			Help:      "number of program invocations by program and outcome",
		}, []string{"program", "code"}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zkledger",
			Name:      "bytes_written",
			Help:      "number of account bytes overwritten by committed invocations",
		}),
	}
	if reg == nil {
		return m, nil
	}
	if err := errors.Join(
		reg.Register(m.invocations),
		reg.Register(m.bytesWritten),
	); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) Reset() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accounts = make(map[ids.ID]*AccountMetrics, 1024)
	m.order = m.order[:0]
	m.summary = MetricsSummary{}
}

func (m *Metrics) getOrCreateLocked(program string, addr ids.ID) *AccountMetrics {
	if a, ok := m.accounts[addr]; ok {
		return a
	}
	if m.maxAccounts > 0 && len(m.order) >= m.maxAccounts {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.accounts, oldest)
	}
	a := &AccountMetrics{
		Address: addr.String(),
		Program: program,
	}
	m.accounts[addr] = a
	m.order = append(m.order, addr)
	m.summary.TotalAccountsObserved++
	return a
}

func (m *Metrics) record(program string, addr ids.ID, written int, exec time.Duration, err error) {
	if m == nil {
		return
	}
	code := CodeOf(err)
	m.invocations.WithLabelValues(program, code.String()).Inc()
	if err == nil {
		m.bytesWritten.Add(float64(written))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a := m.getOrCreateLocked(program, addr)
	a.Invocations++
	a.LastInvokedAtMs = time.Now().UnixMilli()
	a.LastCode = code.String()
	if exec > 0 {
		a.ExecUs += uint64(exec.Microseconds())
	}
	m.summary.TotalInvocations++
	if err != nil {
		a.Rejected++
		a.LastError = err.Error()
		m.summary.TotalRejected++
		if m.summary.RejectedByCode == nil {
			m.summary.RejectedByCode = make(map[string]uint64)
		}
		m.summary.RejectedByCode[code.String()]++
		return
	}
	a.Committed++
	a.LastError = ""
	a.BytesWritten += uint64(written)
	m.summary.TotalCommitted++
	m.summary.TotalBytesWritten += uint64(written)
}

// Snapshot copies the collected metrics. limit keeps only the most recently
// observed accounts when positive.
func (m *Metrics) Snapshot(limit int, includeAccounts bool) MetricsSnapshot {
	snap := MetricsSnapshot{GeneratedAtMs: time.Now().UnixMilli()}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap.Summary = m.summary
	if m.summary.RejectedByCode != nil {
		snap.Summary.RejectedByCode = make(map[string]uint64, len(m.summary.RejectedByCode))
		for k, v := range m.summary.RejectedByCode {
			snap.Summary.RejectedByCode[k] = v
		}
	}
	if !includeAccounts {
		return snap
	}

	keys := m.order
	if limit > 0 && len(keys) > limit {
		keys = keys[len(keys)-limit:]
	}
	snap.Accounts = make([]AccountMetrics, 0, len(keys))
	for _, key := range keys {
		a := m.accounts[key]
		if a == nil {
			continue
		}
		snap.Accounts = append(snap.Accounts, *a)
	}
	return snap
}
