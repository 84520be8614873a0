package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fireboy1919/s3rver"
)

func main() {
	port := flag.Int("port", 0, "listen port (0 picks one)")
	hostname := flag.String("hostname", "localhost", "hostname used for host-style bucket resolution")
	dataDir := flag.String("data-dir", "", "directory to store object data (defaults to an OS temp path)")
	silent := flag.Bool("silent", false, "suppress info-level logging")
	indexDocument := flag.String("index-document", "", "server-wide static website index document")
	errorDocument := flag.String("error-document", "", "server-wide static website error document")
	removeBucketsOnClose := flag.Bool("remove-buckets-on-close", false, "empty the data directory on shutdown")
	keyFile := flag.String("key", "", "path to a PEM-encoded TLS private key")
	certFile := flag.String("cert", "", "path to a PEM-encoded TLS certificate")
	flag.Parse()

	opts := []s3rver.Option{
		s3rver.WithHostname(*hostname),
		s3rver.WithPort(*port),
		s3rver.WithSilent(*silent),
		s3rver.WithWebsite(*indexDocument, *errorDocument),
		s3rver.WithRemoveBucketsOnClose(*removeBucketsOnClose),
	}
	if *dataDir != "" {
		opts = append(opts, s3rver.WithDirectory(*dataDir))
	}
	if *keyFile != "" && *certFile != "" {
		key, err := os.ReadFile(*keyFile)
		if err != nil {
			slog.Error("failed to read TLS key", "error", err)
			os.Exit(1)
		}
		cert, err := os.ReadFile(*certFile)
		if err != nil {
			slog.Error("failed to read TLS cert", "error", err)
			os.Exit(1)
		}
		opts = append(opts, s3rver.WithTLS(key, cert))
	}

	srv, err := s3rver.Run(opts...)
	if err != nil {
		slog.Error("failed to start s3rver", "error", err)
		os.Exit(1)
	}
	fmt.Printf("s3rver listening on %s (data root %s)\n", srv.Addr(), srv.Directory())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	signal.Stop(sigCh)

	if err := srv.Close(); err != nil {
		slog.Error("failed to stop s3rver cleanly", "error", err)
		os.Exit(1)
	}
}
