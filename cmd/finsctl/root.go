package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/arloliu/go-fins/finsudp"
	"github.com/arloliu/go-fins/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is the finsctl version.
const Version = "0.1.0"

const envPrefix = "fins"

// newRootCmd builds the command tree. Every call returns an independent tree with its own
// viper instance.
func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "finsctl",
		Short: "FINS/UDP controller memory access",
		Long: fmt.Sprintf(`finsctl (v%s)

Reads the identity and the word memory areas (A, C, D, H, W) of a controller
over FINS/UDP. Flags can also be set with FINS_* environment variables or in
a .env file, e.g. FINS_HOST=192.168.250.1.`, Version),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadEnv(v); err != nil {
				return err
			}

			return v.BindPFlags(cmd.Flags())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("host", "192.168.250.1", "controller IP address or host name")
	flags.Int("port", 9600, "controller FINS/UDP port")
	flags.Uint8("node", 1, "controller node address (DA1)")
	flags.Uint8("source-node", 0x63, "client node address (SA1)")
	flags.Duration("timeout", finsudp.DefaultReceiveTimeout, "receive timeout per datagram")
	flags.Duration("exchange-timeout", 0, "overall timeout per request, 0 to disable")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.Bool("metrics", false, "print pool metrics in Prometheus text format after the command")

	rootCmd.AddCommand(
		newIdentityCmd(v),
		newReadCmd(v),
		newWriteCmd(v),
		newVersionCmd(),
	)

	return rootCmd
}

// loadEnv loads .env files and binds FINS_* environment variables.
// Missing .env files are skipped, malformed ones are reported.
func loadEnv(v *viper.Viper) error {
	for _, name := range []string{".env", ".env.local"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("finsctl: load %s: %w", name, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return nil
}

// withSession opens a pool session from the configuration in v, runs fn and tears the pool down.
func withSession(cmd *cobra.Command, v *viper.Viper, fn func(p *finsudp.Pool, h finsudp.Handle) error) error {
	level, err := logger.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return err
	}
	log := logger.NewSlogWriter(cmd.ErrOrStderr(), level, false)

	opts := []finsudp.PoolOption{
		finsudp.WithReceiveTimeout(v.GetDuration("timeout")),
		finsudp.WithExchangeTimeout(v.GetDuration("exchange-timeout")),
		finsudp.WithSourceNode(byte(v.GetUint("source-node"))), //nolint:gosec // flag is uint8
		finsudp.WithName("finsctl"),
		finsudp.WithLogger(log),
	}

	var set *metrics.Set
	if v.GetBool("metrics") {
		set = metrics.NewSet()
		opts = append(opts, finsudp.WithMetricsSet(set))
	}

	cfg, err := finsudp.NewPoolConfig(opts...)
	if err != nil {
		return err
	}

	p, err := finsudp.NewPool(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = p.CloseAll() }()

	h, err := p.Open(v.GetString("host"), v.GetInt("port"), finsudp.TransportUDP, byte(v.GetUint("node"))) //nolint:gosec // flag is uint8
	if err != nil {
		return err
	}

	start := time.Now()
	err = fn(p, h)
	log.Debug("finsctl: command finished", "elapsed", time.Since(start), "error", err)

	if set != nil {
		set.WritePrometheus(cmd.OutOrStdout())
	}

	return err
}
