package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/modelgate/internal/config"
	httpx "github.com/dropDatabas3/modelgate/internal/http"
	catalogctrl "github.com/dropDatabas3/modelgate/internal/http/controllers/catalog"
	healthctrl "github.com/dropDatabas3/modelgate/internal/http/controllers/health"
	stagingctrl "github.com/dropDatabas3/modelgate/internal/http/controllers/staging"
	"github.com/dropDatabas3/modelgate/internal/http/router"
	catalogsvc "github.com/dropDatabas3/modelgate/internal/http/services/catalog"
	healthsvc "github.com/dropDatabas3/modelgate/internal/http/services/health"
	stagingsvc "github.com/dropDatabas3/modelgate/internal/http/services/staging"
	"github.com/dropDatabas3/modelgate/internal/observability/logger"
	"github.com/dropDatabas3/modelgate/internal/rate"
	"github.com/dropDatabas3/modelgate/internal/store"
	pgdriver "github.com/dropDatabas3/modelgate/internal/store/adapters/pg"

	// CRITICAL: Import adapters to register them via init()
	_ "github.com/dropDatabas3/modelgate/internal/store/adapters/all"
)

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func maskSecret(s string) string {
	if s == "" {
		return "NOT_SET"
	}
	return "***masked***"
}

func printConfigSummary(c *config.Config) {
	log.Printf(`CONFIG:
  app.env=%s
  server.addr=%s
  cors=%v

  storage.driver=%s
  storage.url=%s
  storage.service_key=%s
  storage.dsn=%s
  storage.path=%s
  tables(models=%s, staging=%s)

  auth.api_secret=%s (len=%d)

  staging.process_limit=%d

  rate(enabled=%t, backend=%s, limit=%d, window=%s)
  redis.addr=%s db=%d

  flags(migrate=%t)
`,
		c.App.Env, c.Server.Addr, c.Server.CORSAllowedOrigins,
		c.Storage.Driver, c.Storage.URL, maskSecret(c.Storage.ServiceKey),
		maskSecret(c.Storage.DSN), c.Storage.Path,
		c.Storage.ModelsTable, c.Storage.StagingTable,
		maskSecret(c.Auth.APISecret), len(c.Auth.APISecret),
		c.Staging.ProcessLimit,
		c.Rate.Enabled, c.Rate.Backend, c.Rate.Limit, c.Rate.Window,
		c.Redis.Addr, c.Redis.DB,
		c.Flags.Migrate,
	)
}

func connMaxLifetime(c *config.Config) time.Duration {
	if c.Storage.Postgres.ConnMaxLifetime == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime)
	if err != nil {
		return 0
	}
	return d
}

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $CONFIG_PATH o configs/config.yaml)")
		flagEnvOnly    = flag.Bool("env", false, "usar SOLO env (y .env si se pasa -env-file)")
		flagEnvFile    = flag.String("env-file", ".env", "ruta a .env (si existe, se carga)")
		flagPrint      = flag.Bool("print-config", false, "imprime config efectiva y termina")
		flagMigrate    = flag.Bool("migrate", false, "aplica migraciones pendientes (driver postgres) antes de servir")
	)
	flag.Parse()

	if *flagEnvFile != "" && (fileExists(*flagEnvFile) || *flagEnvOnly) {
		if err := godotenv.Load(*flagEnvFile); err == nil {
			log.Printf("dotenv: cargado %s", *flagEnvFile)
		}
	}

	var (
		cfg *config.Config
		err error
	)
	cfgPath := *flagConfigPath
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" && fileExists("configs/config.yaml") {
		cfgPath = "configs/config.yaml"
	}
	if *flagEnvOnly || cfgPath == "" {
		cfg, err = config.FromEnv()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *flagPrint {
		printConfigSummary(cfg)
		return
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: healthsvc.ServiceName,
	})
	defer func() { _ = logger.Sync() }()
	lg := logger.L()

	ctx := context.Background()

	st, err := store.Open(ctx, store.Config{
		Driver:          cfg.Storage.Driver,
		URL:             cfg.Storage.URL,
		ServiceKey:      cfg.Storage.ServiceKey,
		DSN:             cfg.Storage.DSN,
		Path:            cfg.Storage.Path,
		MaxConns:        cfg.Storage.Postgres.MaxConns,
		MinConns:        cfg.Storage.Postgres.MinConns,
		ConnMaxLifetime: connMaxLifetime(cfg),
		ModelsTable:     cfg.Storage.ModelsTable,
		StagingTable:    cfg.Storage.StagingTable,
	})
	if err != nil {
		lg.Fatal("store open", logger.Err(err))
	}
	defer func() { _ = st.Close() }()

	// Presencia de credenciales, nunca valores
	lg.Info("datastore connected",
		logger.String("driver", st.Name()),
		logger.Bool("has_store_url", cfg.HasStoreURL()),
		logger.Bool("has_service_key", cfg.HasServiceKey()),
		logger.Int("service_key_len", len(cfg.Storage.ServiceKey)),
		logger.Bool("has_api_secret", cfg.HasAPISecret()),
		logger.Int("api_secret_len", len(cfg.Auth.APISecret)),
	)

	if *flagMigrate || cfg.Flags.Migrate {
		if pg, ok := st.(*pgdriver.Store); ok {
			n, err := pg.RunMigrations(ctx)
			if err != nil {
				lg.Fatal("migrations", logger.Err(err))
			}
			lg.Info("migrations applied", logger.Int("count", n))
		} else {
			// sqlite migra al conectar; supabase administra su esquema aparte
			lg.Warn("migrate requested but driver does not use migrations",
				logger.String("driver", st.Name()))
		}
	}

	var (
		limiter   rate.Limiter
		redisPing func(ctx context.Context) error
	)
	if cfg.Rate.Enabled {
		window := cfg.RateWindow()
		switch cfg.Rate.Backend {
		case "redis":
			rc := rdb.NewClient(&rdb.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			pingErr := rc.Ping(pctx).Err()
			cancel()
			if pingErr != nil {
				lg.Warn("redis unreachable, falling back to in-memory rate limiting",
					logger.Err(pingErr))
				_ = rc.Close()
				limiter = rate.NewMemoryLimiter("rl:", cfg.Rate.Limit, window)
			} else {
				limiter = rate.NewRedisLimiter(rc, "rl:", cfg.Rate.Limit, window)
				redisPing = func(ctx context.Context) error { return rc.Ping(ctx).Err() }
			}
		default:
			limiter = rate.NewMemoryLimiter("rl:", cfg.Rate.Limit, window)
		}
	}

	var poolFunc func() *pgxpool.Pool
	if pg, ok := st.(*pgdriver.Store); ok {
		poolFunc = pg.Pool
	}
	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{Pool: poolFunc})
	if err != nil {
		lg.Fatal("metrics", logger.Err(err))
	}

	catalogSvc := catalogsvc.NewCatalogService(st)
	stagingSvc := stagingsvc.NewStagingService(st, cfg.Staging.ProcessLimit)
	healthSvc := healthsvc.NewHealthService(healthsvc.Deps{
		Cfg:        cfg,
		StoreCheck: st.Ping,
		RedisCheck: redisPing,
	})

	handler := router.New(router.Deps{
		Catalog:            catalogctrl.NewCatalogController(catalogSvc),
		Staging:            stagingctrl.NewStagingController(stagingSvc),
		Health:             healthctrl.NewHealthController(healthSvc),
		APISecret:          cfg.Auth.APISecret,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Limiter:            limiter,
		MetricsHandler:     metricsHandler,
	})

	mode := "yaml"
	if *flagEnvOnly || cfgPath == "" {
		mode = "env"
	}
	lg.Info("service up",
		logger.String("mode", mode),
		logger.String("addr", cfg.Server.Addr),
		logger.String("driver", st.Name()),
		logger.Bool("rate_limit", cfg.Rate.Enabled),
	)

	if err := httpx.Start(cfg.Server.Addr, handler); err != nil {
		lg.Fatal("http server", logger.Err(err))
	}
}
