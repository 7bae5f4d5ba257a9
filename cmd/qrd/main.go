package main

import (
	"flag"
	"fmt"
	"os"

	"qrd/internal/di"
	"qrd/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "enable debug mode")
	flag.Parse()

	if env := os.Getenv("QR_CONFIG_PATH"); env != "" {
		flags.ConfigPath = env
	}

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
