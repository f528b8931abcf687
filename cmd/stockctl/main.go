// Command stockctl talks to the back-office inventory gRPC service.
//
//	stockctl [--addr host:port] reconcile <product-id>
//	stockctl [--addr host:port] dashboard
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"backoffice/internal/inventory/adapters"
	"backoffice/pkg/config"
	"backoffice/pkg/logger"
)

func main() {
	addr := pflag.String("addr", "", "inventory gRPC address (defaults to INVENTORY_GRPC_ADDR)")
	mtls := pflag.Bool("mtls", false, "use mTLS with the GRPC_CLIENT_* certificates")
	verbose := pflag.BoolP("verbose", "v", false, "log RPC details")
	pflag.Usage = usage
	pflag.Parse()

	level := "error"
	if *verbose {
		level = "debug"
	}
	log := logger.New("stockctl", level)
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	if *addr != "" {
		cfg.InventoryGRPCAddr = *addr
	}
	if *mtls {
		cfg.GRPCMTLSEnabled = true
	}

	args := pflag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	client, err := adapters.NewGRPCInventoryClient(cfg)
	if err != nil {
		log.Fatal("failed to connect to inventory service", zap.Error(err))
	}
	defer client.Close()

	ctx := context.Background()
	log.Debug("calling inventory service",
		zap.String("addr", cfg.InventoryGRPCAddr),
		zap.String("command", args[0]),
	)

	if err := run(ctx, client, args); err != nil {
		fmt.Fprintln(os.Stderr, "stockctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *adapters.GRPCInventoryClient, args []string) error {
	switch args[0] {
	case "reconcile":
		if len(args) != 2 {
			return fmt.Errorf("usage: stockctl reconcile <product-id>")
		}
		available, err := client.ReconcileProduct(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s availableQuantity=%d\n", args[1], available)
		return nil

	case "dashboard":
		dashboard, err := client.GetDashboard(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(dashboard)

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: stockctl [flags] reconcile <product-id> | dashboard")
	pflag.PrintDefaults()
}
