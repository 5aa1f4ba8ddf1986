package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chronoshop/internal/api"
	"chronoshop/internal/config"
	"chronoshop/internal/credstore"
	"chronoshop/internal/db"
	"chronoshop/internal/pkg/logger"
	"chronoshop/internal/session"
	shopmgr "chronoshop/internal/shop"
)

// app bundles the wired client core shared by every subcommand.
type app struct {
	cfg     config.AppConfig
	logger  *zap.Logger
	session *session.Holder
	client  *api.Client
	shop    *shopmgr.Manager
}

func newApp() *app {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}

	cfg := config.Load()
	zlog := logger.New(cfg.Debug)

	// Redis keeps credentials across CLI invocations; without it the
	// session lives only for a single command.
	var creds credstore.Store
	if redisClient, err := db.NewRedisClient(cfg); err == nil {
		creds = credstore.NewRedisStore(redisClient, "shopctl")
	} else {
		zlog.Warn("redis unavailable, credentials will not persist", zap.Error(err))
		creds = credstore.NewMemoryStore()
	}

	holder := session.NewHolder()
	holder.OnForcedLogout(func(reason string) {
		log.Printf("logged out: %s. Run `shopctl login` to sign in again", reason)
	})

	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, holder, creds, zlog)

	return &app{
		cfg:     cfg,
		logger:  zlog,
		session: holder,
		client:  client,
		shop:    shopmgr.NewManager(client, holder, zlog),
	}
}

func main() {
	a := newApp()
	defer a.logger.Sync()

	root := &cobra.Command{
		Use:          "shopctl",
		Short:        "Storefront client for the chronoshop watch retailer",
		SilenceUsage: true,
	}
	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProductsCmd(a),
		newCartCmd(a),
		newWishCmd(a),
		newOrderCmd(a),
		newWatchCmd(a),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
