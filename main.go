package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-authgate/dbrealm/internal/cache"
	"github.com/go-authgate/dbrealm/internal/config"
	"github.com/go-authgate/dbrealm/internal/core"
	"github.com/go-authgate/dbrealm/internal/handlers"
	"github.com/go-authgate/dbrealm/internal/metrics"
	"github.com/go-authgate/dbrealm/internal/middleware"
	"github.com/go-authgate/dbrealm/internal/realm"
	"github.com/go-authgate/dbrealm/internal/services"
	"github.com/go-authgate/dbrealm/internal/store"
	"github.com/go-authgate/dbrealm/internal/version"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Define flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = printUsage
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		version.PrintVersion()
		os.Exit(0)
	}

	// Check if command is provided
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Handle subcommands
	switch args[0] {
	case "server":
		runServer()
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Usage: %s [OPTIONS] COMMAND\n\n", os.Args[0])
	fmt.Println("SQL-backed principal resolution service")
	fmt.Println("\nCommands:")
	fmt.Println("  server    Start the resolution server")
	fmt.Println("\nOptions:")
	fmt.Println("  -v, --version    Show version information")
	fmt.Println("  -h, --help       Show this help message")
}

func runServer() {
	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize store
	db, err := store.New(cfg.DatabaseDriver, cfg.DatabaseDSN, cfg.SeedAdmin)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize metrics
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}

	// Initialize principal cache
	principalCache := initializeCache(cfg)
	if principalCache != nil {
		defer func() {
			if err := principalCache.Close(); err != nil {
				log.Printf("Warning: failed to close cache: %v", err)
			}
		}()
	}

	// Initialize resolver
	resolver, err := realm.New(db, cfg.RealmOptions())
	if err != nil {
		log.Fatalf("Failed to initialize realm resolver: %v", err)
	}
	log.Printf(
		"Realm resolver ready (authorities=%v, groups=%v, role_prefix=%q)",
		cfg.EnableAuthorities, cfg.EnableGroups, cfg.RolePrefix,
	)

	// Initialize services
	principalService, err := services.NewPrincipalService(
		resolver,
		principalCache,
		recorder,
		cfg.CacheTTL,
	)
	if err != nil {
		log.Fatalf("Failed to initialize principal service: %v", err)
	}

	// Initialize handlers
	principalHandler := handlers.NewPrincipalHandler(principalService)
	healthHandler := handlers.NewHealthHandler(db, principalCache)

	// Setup router
	router := gin.Default()
	router.GET("/healthz", healthHandler.Healthz)
	if cfg.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api")
	api.Use(middleware.RequireAuthority(principalService, store.AdminAuthority))
	api.GET("/principals/:username", principalHandler.GetPrincipal)

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	m := graceful.NewManager()
	m.AddRunningJob(func(ctx context.Context) error {
		log.Printf("Server listening on %s", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	m.AddShutdownJob(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})

	<-m.Done()
}

// initializeCache creates the principal cache selected by CACHE_DRIVER,
// or nil when caching is disabled.
func initializeCache(cfg *config.Config) core.Cache[realm.Principal] {
	switch cfg.CacheDriver {
	case config.CacheDriverRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c, err := cache.NewRueidisCache[realm.Principal](
			ctx,
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			"dbrealm:",
		)
		if err != nil {
			log.Fatalf("Failed to initialize redis cache: %v", err)
		}
		log.Printf("Principal cache: redis (addr=%s, db=%d, ttl=%s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.CacheTTL)
		return c
	case config.CacheDriverMemory:
		log.Printf("Principal cache: memory (ttl=%s, single instance only)", cfg.CacheTTL)
		return cache.NewMemoryCache[realm.Principal]()
	default:
		log.Println("Principal cache disabled")
		return nil
	}
}
