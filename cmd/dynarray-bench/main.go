// Copyright 2024 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/matrixorigin/dynarray/pkg/config"
	"github.com/matrixorigin/dynarray/pkg/logutil"
	v2 "github.com/matrixorigin/dynarray/pkg/util/metric/v2"
)

var (
	configFile = flag.String("cfg", "./bench.toml", "toml configuration used to run dynarray-bench")
	version    = flag.Bool("version", false, "print version information")
)

var (
	GoVersion = ""
	Version   = ""
)

func main() {
	flag.Parse()
	maybePrintVersion()

	cfg, err := config.Parse(*configFile)
	if err != nil {
		panic(fmt.Sprintf("failed to parse config from %s, error: %s", *configFile, err.Error()))
	}
	setupLogger(cfg)

	stopMetrics := startMetricsServer(cfg)
	defer stopMetrics()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		logutil.Error("dynarray-bench failed", zap.Error(err))
		os.Exit(1)
	}
}

func maybePrintVersion() {
	if !*version {
		return
	}
	fmt.Println("dynarray-bench")
	fmt.Printf("  Version: %s\n", Version)
	fmt.Printf("  Go version: %s\n", GoVersion)
	os.Exit(0)
}

func setupLogger(cfg *config.Config) {
	logutil.SetupMOLogger(&cfg.Log)
}

func startMetricsServer(cfg *config.Config) func() {
	if cfg.Metrics.ListenAddress == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(v2.GetPrometheusRegistry(), promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:    cfg.Metrics.ListenAddress,
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logutil.Error("metrics server stopped", zap.Error(err))
		}
	}()
	logutil.Info("metrics server started", zap.String("address", cfg.Metrics.ListenAddress))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
