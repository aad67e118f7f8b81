// Package main is the entry point for the clonehero2beatsaber API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/james-see/clonehero2beatsaber/pkg/api"
	"github.com/james-see/clonehero2beatsaber/pkg/config"
)

func main() {
	port := flag.Int("port", 8080, "Server port")
	configPath := flag.String("config", "config.json", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting clonehero2beatsaber API server on port %d...\n", *port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", *port)

	if err := api.StartServer(*port, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
