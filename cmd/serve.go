package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Mazzz-zzz/voca.fi/pkg/agent"
	"github.com/Mazzz-zzz/voca.fi/pkg/chat"
	"github.com/Mazzz-zzz/voca.fi/pkg/server"
	"github.com/Mazzz-zzz/voca.fi/pkg/swap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serves the assistant over HTTP: chat, token resolution, quotes and
queue management. The chat endpoint is only enabled when an OpenAI key is
configured; everything else works without one.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, true, nil)
	if err != nil {
		return err
	}
	defer a.close()

	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)

	var session *chat.Session
	if key := a.openAIKey(); key != "" {
		assistant, err := agent.New(key, a.cfg.OpenAIModel, log)
		if err != nil {
			return err
		}
		session = chat.NewSession(chat.Config{
			Assistant:     assistant,
			Preparer:      a.preparer,
			Queue:         a.queue,
			Gate:          swap.NewConfirmationGate(),
			Executor:      a.exec,
			Chain:         a.exec,
			Prices:        a.enso,
			Settings:      a.settings,
			SettingsStore: a.settingsStore,
			ChainID:       a.cfg.ChainID,
			Logger:        log,
		})
	} else {
		log.Warn("no OpenAI key configured, /chat is disabled")
	}

	srv := server.New(server.Config{
		ListenAddr: a.cfg.ListenAddr,
		ChainID:    a.cfg.ChainID,
		Session:    session,
		Resolver:   a.resolver,
		Preparer:   a.preparer,
		Enso:       a.enso,
		Queue:      a.queue,
		Executor:   a.exec,
		Logger:     log,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
