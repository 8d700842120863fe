package main

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/internal/cli"
	"github.com/aretw0/automata/internal/presentation/tui"
	httpadapter "github.com/aretw0/automata/pkg/adapters/http"
	"github.com/aretw0/automata/pkg/adapters/memory"
	"github.com/aretw0/automata/pkg/adapters/redis"
	"github.com/aretw0/automata/pkg/observability"
	"github.com/aretw0/automata/pkg/persistence/middleware"
	"github.com/aretw0/automata/pkg/ports"
)

var (
	servePort          int
	serveRedisAddr     string
	serveRedisPassword string
	serveRedisDB       int
	serveTraceTTL      time.Duration
	serveRateLimit     int
	serveQuiet         bool
	serveEncryptionKey string
	serveMaxRuns       int
	serveMaxSteps      int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves validation, diagrams and simulation as a JSON API. Simulated runs are
kept in memory, or in Redis when --redis-addr is set. Prometheus metrics are
exposed on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		metrics := observability.NewMetrics()
		hooks := metrics.Hooks()
		if debug {
			hooks = observability.CombineHooks(hooks, cli.DebugHooks(logger))
		}
		engine := automata.New(automata.WithLogger(logger), automata.WithLifecycleHooks(hooks))

		var store ports.TraceStore = memory.NewStore(memory.WithMaxRuns(serveMaxRuns))
		var closeStore func() error
		if serveRedisAddr != "" {
			rs := redis.New(serveRedisAddr, serveRedisPassword, serveRedisDB, redis.WithTTL(serveTraceTTL))
			if err := rs.Ping(ctx); err != nil {
				_ = rs.Close()
				return fmt.Errorf("redis unreachable at %s: %w", serveRedisAddr, err)
			}
			store, closeStore = rs, rs.Close
		}

		if key := cmp.Or(serveEncryptionKey, os.Getenv("AUTOMATA_ENCRYPTION_KEY")); key != "" {
			raw, err := middleware.ParseKey(key)
			if err != nil {
				return fmt.Errorf("invalid encryption key: %w", err)
			}
			seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: raw})
			if err != nil {
				return err
			}
			store = middleware.Chain(store, seal)
		}

		server, err := httpadapter.NewServer(engine,
			httpadapter.WithStore(store),
			httpadapter.WithMetrics(metrics),
			httpadapter.WithRateLimit(serveRateLimit),
			httpadapter.WithMaxSteps(serveMaxSteps),
			httpadapter.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		addr := fmt.Sprintf(":%d", servePort)
		if !serveQuiet {
			tui.PrintBanner(cmd.ErrOrStderr())
			cli.PrintSystemMessage(cmd.ErrOrStderr(), "automata %s listening on %s", automata.Version, addr)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return server.Serve(gctx, addr)
		})
		g.Go(func() error {
			<-gctx.Done()
			if closeStore != nil {
				return closeStore()
			}
			return nil
		})

		if err := g.Wait(); err != nil && !cli.IsInterrupted(err) {
			return err
		}
		if !serveQuiet {
			cli.PrintSystemMessage(cmd.ErrOrStderr(), "Server stopped.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveRedisAddr, "redis-addr", "", "Keep runs in Redis at this address")
	serveCmd.Flags().StringVar(&serveRedisPassword, "redis-password", "", "Redis password")
	serveCmd.Flags().IntVar(&serveRedisDB, "redis-db", 0, "Redis database")
	serveCmd.Flags().DurationVar(&serveTraceTTL, "trace-ttl", 24*time.Hour, "How long Redis keeps a run (0 keeps it forever)")
	serveCmd.Flags().IntVar(&serveRateLimit, "rate-limit", 120, "Requests per minute per client IP on /v1 (0 disables)")
	serveCmd.Flags().StringVar(&serveEncryptionKey, "encryption-key", "", "Seal stored runs with this AES-256 key, hex or base64 (or set AUTOMATA_ENCRYPTION_KEY)")
	serveCmd.Flags().IntVar(&serveMaxRuns, "max-runs", memory.DefaultMaxRuns, "Runs kept in memory when Redis is not used; the oldest are evicted (0 keeps all)")
	serveCmd.Flags().IntVar(&serveMaxSteps, "max-steps", automata.DefaultStepLimit, "Largest max_steps a client may request")
	serveCmd.Flags().BoolVarP(&serveQuiet, "quiet", "q", false, "Skip the banner")
}

