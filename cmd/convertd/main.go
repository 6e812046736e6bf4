package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tixx/currency-converter/internal/oxr"
	"github.com/tixx/currency-converter/internal/router"
	"github.com/tixx/currency-converter/internal/server"
)

func main() {
	host := flag.String("host", "127.0.0.1", "address to listen on")
	port := flag.Int("port", 53210, "port to listen on")
	name := flag.String("name", "localhost", "server name expected in the Host header")
	target := flag.String("target", "RUB", "currency symbol conversions are quoted in")
	apiURL := flag.String("oxr-url", oxr.DefaultAPIURL, "latest-rates endpoint")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("error building logger: %v", err)
	}
	defer logger.Sync()

	appID := os.Getenv("OXR_APP_ID")
	if appID == "" {
		logger.Fatal("OXR_APP_ID is not set")
	}

	client := oxr.NewClient(*apiURL, appID, logger.Named("oxr"))
	routes := router.New(client, *target, logger.Named("router"))

	cfg := server.Config{Host: *host, Port: *port, Name: *name}
	srv, err := server.Serve(cfg, routes.Route, logger.Named("server"))
	if err != nil {
		logger.Fatal("error starting the server", zap.Error(err))
	}
	defer srv.Close()
	logger.Info("server started",
		zap.String("name", *name),
		zap.String("host", *host),
		zap.Int("port", *port))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("server gracefully stopped")
}
