package finsudp

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/arloliu/go-fins/fins"
	"github.com/arloliu/go-fins/logger"
)

// Default pool settings.
const (
	DefaultReceiveTimeout = 300 * time.Millisecond // per receive window
	DefaultChunkSize      = 2                      // slots added when the pool is full
	DefaultPoolName       = "fins"
)

// Pool setting limits.
const (
	MinReceiveTimeout = 10 * time.Millisecond
	MaxReceiveTimeout = 1000 * time.Millisecond

	MaxExchangeTimeout = 60 * time.Second

	MinChunkSize = 2
	MaxChunkSize = 1024
)

// PoolConfig holds the configuration of a Pool. Use NewPoolConfig to create one.
type PoolConfig struct {
	// receiveTimeout bounds every wait for a datagram.
	receiveTimeout time.Duration
	// exchangeTimeout bounds a whole exchange across discarded datagrams, 0 disables it.
	exchangeTimeout time.Duration

	chunkSize int

	// sourceNode is the SA1 of every command.
	sourceNode byte
	// localAddr is the address sessions bind their ephemeral port to.
	localAddr netip.Addr

	name       string
	metricsSet *metrics.Set
	logger     logger.Logger
}

// NewPoolConfig creates a new pool configuration.
//
// opts are functional options applied in order; see With* functions.
func NewPoolConfig(opts ...PoolOption) (*PoolConfig, error) {
	cfg := &PoolConfig{
		receiveTimeout: DefaultReceiveTimeout,
		chunkSize:      DefaultChunkSize,
		sourceNode:     fins.DefaultSourceNode,
		localAddr:      netip.IPv4Unspecified(),
		name:           DefaultPoolName,
		logger:         logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// --- Getters ---

// ReceiveTimeout returns the timeout of a single receive window.
func (cfg *PoolConfig) ReceiveTimeout() time.Duration { return cfg.receiveTimeout }

// ExchangeTimeout returns the overall exchange timeout, 0 if disabled.
func (cfg *PoolConfig) ExchangeTimeout() time.Duration { return cfg.exchangeTimeout }

// ChunkSize returns the number of slots added when the pool grows.
func (cfg *PoolConfig) ChunkSize() int { return cfg.chunkSize }

// SourceNode returns the node address the client identifies itself with.
func (cfg *PoolConfig) SourceNode() byte { return cfg.sourceNode }

// LocalAddr returns the local address sessions bind to.
func (cfg *PoolConfig) LocalAddr() netip.Addr { return cfg.localAddr }

// Name returns the pool name used as metrics label.
func (cfg *PoolConfig) Name() string { return cfg.name }

// MetricsSet returns the metrics set the pool registers its gauges in, or nil.
func (cfg *PoolConfig) MetricsSet() *metrics.Set { return cfg.metricsSet }

// GetLogger returns the configured logger.
func (cfg *PoolConfig) GetLogger() logger.Logger { return cfg.logger }

// --- PoolOption ---

// PoolOption is a functional option for configuring a PoolConfig.
type PoolOption interface {
	apply(*PoolConfig) error
}

type poolOptFunc func(*PoolConfig) error

func (f poolOptFunc) apply(cfg *PoolConfig) error { return f(cfg) }

// WithReceiveTimeout sets the timeout of a single receive window. Must be in [10ms, 1000ms].
func WithReceiveTimeout(d time.Duration) PoolOption {
	return poolOptFunc(func(cfg *PoolConfig) error {
		if d < MinReceiveTimeout || d > MaxReceiveTimeout {
			return fmt.Errorf("finsudp: receive timeout %v out of range [%v, %v]", d, MinReceiveTimeout, MaxReceiveTimeout)
		}
		cfg.receiveTimeout = d

		return nil
	})
}

// WithExchangeTimeout bounds a whole exchange, including the receive windows restarted by
// discarded datagrams. 0 disables the bound and every discarded datagram restarts a full
// receive window.
func WithExchangeTimeout(d time.Duration) PoolOption {
	return poolOptFunc(func(cfg *PoolConfig) error {
		if d < 0 || d > MaxExchangeTimeout {
			return fmt.Errorf("finsudp: exchange timeout %v out of range [0, %v]", d, MaxExchangeTimeout)
		}
		cfg.exchangeTimeout = d

		return nil
	})
}

// WithChunkSize sets the number of slots added when the pool is full. Must be in [2, 1024].
func WithChunkSize(n int) PoolOption {
	return poolOptFunc(func(cfg *PoolConfig) error {
		if n < MinChunkSize || n > MaxChunkSize {
			return fmt.Errorf("finsudp: chunk size %d out of range [%d, %d]", n, MinChunkSize, MaxChunkSize)
		}
		cfg.chunkSize = n

		return nil
	})
}

// WithSourceNode sets the node address (SA1) of the client. Defaults to 0x63.
func WithSourceNode(node byte) PoolOption {
	return poolOptFunc(func(cfg *PoolConfig) error {
		cfg.sourceNode = node
		return nil
	})
}

// WithLocalAddr sets the IPv4 address sessions bind their ephemeral port to.
// Defaults to the unspecified address.
func WithLocalAddr(addr string) PoolOption {
	return poolOptFunc(func(cfg *PoolConfig) error {
		ip, err := netip.ParseAddr(addr)
		if err != nil {
			return fmt.Errorf("finsudp: invalid local address %q: %w", addr, err)
		}
		ip = ip.Unmap()
		if !ip.Is4() {
			return fmt.Errorf("finsudp: local address %q is not IPv4", addr)
		}
		cfg.localAddr = ip

		return nil
	})
}

// WithName sets the pool name, used as the "pool" label of its metrics.
func WithName(name string) PoolOption {
	return poolOptFunc(func(cfg *PoolConfig) error {
		if name == "" {
			return errors.New("finsudp: pool name must not be empty")
		}
		cfg.name = name

		return nil
	})
}

// WithMetricsSet registers the pool gauges in set when the pool is created.
func WithMetricsSet(set *metrics.Set) PoolOption {
	return poolOptFunc(func(cfg *PoolConfig) error {
		if set == nil {
			return errors.New("finsudp: metrics set must not be nil")
		}
		cfg.metricsSet = set

		return nil
	})
}

// WithLogger sets the logger of the pool and its sessions.
func WithLogger(l logger.Logger) PoolOption {
	return poolOptFunc(func(cfg *PoolConfig) error {
		if l == nil {
			return errors.New("finsudp: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
