package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"architecta/internal/config"
	"architecta/internal/database"
	"architecta/internal/dataservice"
	"architecta/internal/handlers"
	"architecta/internal/logging"
	"architecta/internal/onboarding"
	"architecta/internal/pulse"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "architecta: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	var source pulse.Source = repo
	if cfg.UsesDataService() {
		source = dataservice.NewClient(cfg.DataServiceURL, cfg.DataServiceKey, cfg.DataServiceTimeout)
		logger.Info("Pulse reads from remote data service", zap.String("url", cfg.DataServiceURL))
	}

	agg := pulse.New(source, logger.Named("pulse"))

	var opts []handlers.Option
	if cfg.TrustOwnerHeader {
		opts = append(opts, handlers.WithOwnerHeader())
		logger.Warn("Accepting unauthenticated X-Owner-ID header")
	}
	h := handlers.New(repo, agg, onboarding.NewService(repo), logger.Named("http"), opts...)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("url", "http://localhost:"+cfg.ServerPort))
		for _, ip := range lanIPs() {
			logger.Info("LAN access", zap.String("url", "http://"+ip+":"+cfg.ServerPort))
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func lanIPs() []string {
	var ips []string
	ifaces, err := net.Interfaces()
	if err != nil {
		return ips
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil {
				continue
			}
			ip = ip.To4()
			if ip == nil {
				continue
			}
			ips = append(ips, ip.String())
		}
	}
	return ips
}
