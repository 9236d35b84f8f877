package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/user/rsakit/internal/server"
)

var (
	webPort    string
	webWorkers int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API for keys, encryption and benchmark jobs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := server.NewServerWithWorkers(webPort, webWorkers)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		log.Println("Press Ctrl+C to stop")
		return srv.Start(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&webPort, "port", "8080", "Web server port")
	serveCmd.Flags().IntVar(&webWorkers, "workers", 1, "Benchmark jobs run concurrently")
}
