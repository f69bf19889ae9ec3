package main

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/lockgate/internal/application/auth"
	"github.com/amirhosseinghanipour/lockgate/internal/application/ports"
	"github.com/amirhosseinghanipour/lockgate/internal/config"
	"github.com/amirhosseinghanipour/lockgate/internal/infrastructure/security"
	"github.com/amirhosseinghanipour/lockgate/internal/infrastructure/store"
)

// defaultSeed mirrors the demo accounts provisioned by `lockgate seed`.
var defaultSeed = []auth.SeedAccount{
	{Identifier: "admin", Password: "admin123"},
	{Identifier: "user1", Password: "password1"},
	{Identifier: "user2", Password: "password2"},
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		log = log.Level(lvl)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	ctx := context.Background()
	credStore, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.Store.URL).Msg("open credential store")
	}
	defer closeStore()

	hasher := security.NewHasher(security.Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
	})
	engine := auth.NewEngine(ctx, credStore, hasher, auth.Options{
		MaxFailures:  cfg.Lockout.MaxFailures,
		LockDuration: cfg.Lockout.LockDuration,
	}, log)

	switch cmd {
	case "register":
		requireArgs(args, 2, "register <identifier> <password>")
		exitOnErr(engine.Register(ctx, args[0], args[1]))
		fmt.Println("account registered")
	case "login":
		requireArgs(args, 2, "login <identifier> <password>")
		exitOnErr(engine.Login(ctx, args[0], args[1]))
		fmt.Println("login succeeded")
	case "unlock":
		requireArgs(args, 1, "unlock <identifier>")
		ok, err := engine.Unlock(ctx, args[0])
		exitOnErr(err)
		if !ok {
			fmt.Println("unknown identifier")
			os.Exit(1)
		}
		fmt.Println("account unlocked")
	case "info":
		requireArgs(args, 1, "info <identifier>")
		info, err := engine.AccountInfo(ctx, args[0])
		exitOnErr(err)
		if info == nil {
			fmt.Println("unknown identifier")
			os.Exit(1)
		}
		fmt.Printf("identifier: %s\nlocked: %t\nfailed attempts: %d\n", info.Identifier, info.Locked, info.FailureCount)
		if info.LockMessage != "" {
			fmt.Printf("lock: %s\n", info.LockMessage)
		}
	case "seed":
		exitOnErr(engine.Seed(ctx, defaultSeed))
		fmt.Println("default accounts seeded")
	default:
		usage()
		os.Exit(2)
	}
}

// openStore picks the CredentialStore implementation from the URL scheme.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.CredentialStore, func(), error) {
	u, err := url.Parse(cfg.Store.URL)
	scheme := ""
	if err == nil {
		scheme = u.Scheme
	}
	switch scheme {
	case "postgres", "postgresql":
		ps, err := store.NewPostgresStore(ctx, cfg.Store.URL, cfg.Store.Timeout)
		if err != nil {
			return nil, nil, err
		}
		if err := ps.EnsureSchema(ctx); err != nil {
			ps.Close()
			return nil, nil, err
		}
		return ps, ps.Close, nil
	case "redis", "rediss":
		rs, err := store.NewRedisStore(ctx, cfg.Store.URL, cfg.Store.Timeout)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil
	default:
		return store.NewFileStore(cfg.Store.URL, log), func() {}, nil
	}
}

func requireArgs(args []string, n int, form string) {
	if len(args) != n {
		fmt.Fprintf(os.Stderr, "usage: lockgate %s\n", form)
		os.Exit(2)
	}
}

func exitOnErr(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: lockgate <command> [args]

commands:
  register <identifier> <password>   create an account
  login <identifier> <password>      verify credentials
  unlock <identifier>                force-unlock an account
  info <identifier>                  show lock state and failure count
  seed                               provision the demo accounts

configuration via environment: LOCKGATE_STORE_URL, LOCKGATE_MAX_FAILURES,
LOCKGATE_LOCK_DURATION, LOCKGATE_STORE_TIMEOUT, LOCKGATE_ARGON2_*,
LOCKGATE_LOG_LEVEL`)
}
