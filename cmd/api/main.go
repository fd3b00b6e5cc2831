package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/brewtab/brewtab/internal/account"
	accountStore "github.com/brewtab/brewtab/internal/account/store"
	"github.com/brewtab/brewtab/internal/config"
	"github.com/brewtab/brewtab/internal/database"
	brewtabHttp "github.com/brewtab/brewtab/internal/http"
	accountHandler "github.com/brewtab/brewtab/internal/http/account"
	orderHandler "github.com/brewtab/brewtab/internal/http/order"
	shareHandler "github.com/brewtab/brewtab/internal/http/share"
	staffHandler "github.com/brewtab/brewtab/internal/http/staff"
	walletHandler "github.com/brewtab/brewtab/internal/http/wallet"
	"github.com/brewtab/brewtab/internal/importer"
	"github.com/brewtab/brewtab/internal/order"
	orderStore "github.com/brewtab/brewtab/internal/order/store"
	"github.com/brewtab/brewtab/internal/share"
	shareStore "github.com/brewtab/brewtab/internal/share/store"
	"github.com/brewtab/brewtab/internal/wallet"
	walletStore "github.com/brewtab/brewtab/internal/wallet/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	var (
		accountService = account.NewService(accountStore.New(db), cfg.Wallet.SignupBonus)
		walletService  = wallet.NewService(walletStore.New(db), accountService)
		shareService   = share.NewService(shareStore.New(db), cfg.Share.ExpiryWindow)
		orderService   = order.NewService(orderStore.New(db))
		importService  = importer.NewService(accountService, walletService)
	)

	var (
		accountH = accountHandler.NewHandler(accountService, walletService)
		walletH  = walletHandler.NewHandler(walletService)
		shareH   = shareHandler.NewHandler(shareService)
		orderH   = orderHandler.NewHandler(orderService)
		staffH   = staffHandler.NewHandler(shareService, importService,
			[]byte(cfg.Auth.JWTSecret), cfg.Auth.StaffCodeHash, cfg.Auth.TokenExpiry)
	)

	go sweepExpiredShares(shareService, cfg.Share.SweepInterval)

	router := brewtabHttp.New(accountH, walletH, shareH, orderH, staffH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// sweepExpiredShares periodically flips lapsed pending transfers to expired
// so earmarks are released even when nobody touches the code again.
func sweepExpiredShares(shares *share.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)

		n, err := shares.ExpireStale(ctx)
		cancel()

		if err != nil {
			slog.Error("share expiry sweep failed", "error", err)
			continue
		}

		if n > 0 {
			slog.Info("expired stale share transfers", "count", n)
		}
	}
}
