package finsudp

import (
	"fmt"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
)

// PoolMetrics contains atomic metrics for a Pool and all of its sessions.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc, or registered
// in a VictoriaMetrics set with Register.
type PoolMetrics struct {
	// SessionOpenCount indicates the number of sessions opened.
	SessionOpenCount atomic.Uint64
	// SessionCloseCount indicates the number of sessions closed.
	SessionCloseCount atomic.Uint64
	// ActiveSessionGauge indicates the number of open sessions.
	ActiveSessionGauge atomic.Int64

	// ExchangeCount indicates the number of exchanges started.
	ExchangeCount atomic.Uint64
	// ExchangeErrCount indicates the number of exchanges that failed.
	ExchangeErrCount atomic.Uint64
	// TimeoutCount indicates the number of exchanges that ended with a receive timeout.
	TimeoutCount atomic.Uint64

	// DiscardedPeerCount indicates the number of datagrams discarded because of a foreign sender.
	DiscardedPeerCount atomic.Uint64
	// DiscardedSeqCount indicates the number of delayed replies discarded because of a stale sequence id.
	DiscardedSeqCount atomic.Uint64

	// SendBytes indicates the number of bytes sent.
	SendBytes atomic.Uint64
	// RecvBytes indicates the number of bytes of accepted replies.
	RecvBytes atomic.Uint64
}

func (m *PoolMetrics) incSessionOpenCount() {
	m.SessionOpenCount.Add(1)
	m.ActiveSessionGauge.Add(1)
}

func (m *PoolMetrics) incSessionCloseCount() {
	m.SessionCloseCount.Add(1)
	m.ActiveSessionGauge.Add(-1)
}

func (m *PoolMetrics) incExchangeCount() {
	m.ExchangeCount.Add(1)
}

func (m *PoolMetrics) incExchangeErrCount() {
	m.ExchangeErrCount.Add(1)
}

func (m *PoolMetrics) incTimeoutCount() {
	m.TimeoutCount.Add(1)
}

func (m *PoolMetrics) incDiscardedPeerCount() {
	m.DiscardedPeerCount.Add(1)
}

func (m *PoolMetrics) incDiscardedSeqCount() {
	m.DiscardedSeqCount.Add(1)
}

func (m *PoolMetrics) addSendBytes(n int) {
	m.SendBytes.Add(uint64(n)) //nolint:gosec // n is a datagram length
}

func (m *PoolMetrics) addRecvBytes(n int) {
	m.RecvBytes.Add(uint64(n)) //nolint:gosec // n is a datagram length
}

// Register exposes the metrics as gauges of set, labeled with pool="name".
//
// Registering a second pool with the same name in the same set keeps the gauges of the first one.
func (m *PoolMetrics) Register(set *metrics.Set, name string) {
	gauge := func(metric string, f func() float64) {
		set.GetOrCreateGauge(fmt.Sprintf(`%s{pool=%q}`, metric, name), f)
	}
	counter := func(v *atomic.Uint64) func() float64 {
		return func() float64 { return float64(v.Load()) }
	}

	gauge("fins_sessions_opened_total", counter(&m.SessionOpenCount))
	gauge("fins_sessions_closed_total", counter(&m.SessionCloseCount))
	gauge("fins_sessions_active", func() float64 { return float64(m.ActiveSessionGauge.Load()) })
	gauge("fins_exchanges_total", counter(&m.ExchangeCount))
	gauge("fins_exchange_errors_total", counter(&m.ExchangeErrCount))
	gauge("fins_receive_timeouts_total", counter(&m.TimeoutCount))
	gauge("fins_discarded_peer_total", counter(&m.DiscardedPeerCount))
	gauge("fins_discarded_sequence_total", counter(&m.DiscardedSeqCount))
	gauge("fins_sent_bytes_total", counter(&m.SendBytes))
	gauge("fins_received_bytes_total", counter(&m.RecvBytes))
}
