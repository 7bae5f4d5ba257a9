// qrdsync pushes the local editor state to the remote host in one snapshot.
// It is meant to run on the workshop machine after editing the registry:
// everything the host serves (customers, visit history, redirect config and
// the current token) converges on what this machine holds.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"qrd/internal/providers"
	"qrd/internal/structures"
	"qrd/internal/syncclient"
)

func main() {
	flags := &structures.CliFlags{}
	var rotate bool
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "enable debug mode")
	flag.BoolVar(&rotate, "rotate", false, "rotate the redirect token as part of this push")
	flag.Parse()

	if env := os.Getenv("QR_CONFIG_PATH"); env != "" {
		flags.ConfigPath = env
	}

	if err := run(flags, rotate); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(flags *structures.CliFlags, rotate bool) error {
	conf, err := providers.NewConfigProvider(flags)
	if err != nil {
		return err
	}
	if rotate {
		conf.Sync.RotateOnPush = true
	}

	logger, err := providers.NewLogProvider(conf)
	if err != nil {
		return err
	}
	defer logger.Close()

	st, err := providers.NewStoreProvider(conf, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	compressor, err := providers.NewZstdCompressor()
	if err != nil {
		return err
	}

	client, err := syncclient.New(conf, compressor, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	snap, err := syncclient.BuildSnapshot(ctx, st, conf)
	if err != nil {
		return fmt.Errorf("failed to build snapshot: %w", err)
	}

	result, err := client.Push(ctx, snap)
	if err != nil {
		return err
	}

	fmt.Printf("applied: %d customers (apply %s)\n", result.Customers, result.ApplyID)
	if result.Rotated {
		fmt.Printf("token rotated, reprint the QR code: %s\n", result.Token)
	} else if result.Token != "" {
		fmt.Printf("current token: %s\n", result.Token)
	}
	return nil
}
