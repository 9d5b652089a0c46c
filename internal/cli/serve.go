package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vocaquiz/vocaquiz/internal/config"
	"github.com/vocaquiz/vocaquiz/internal/server"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(*configPath)
		},
	}
}

func runServer(configPath string) error {
	c := server.Default()
	if err := config.Load(configPath, &c); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s, err := server.Init(c)
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, os.Interrupt)

	go s.Start()

	<-shutdown
	s.Shutdown()
	return nil
}
