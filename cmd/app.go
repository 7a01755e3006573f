package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Mazzz-zzz/voca.fi/config"
	"github.com/Mazzz-zzz/voca.fi/pkg/enso"
	"github.com/Mazzz-zzz/voca.fi/pkg/executor"
	"github.com/Mazzz-zzz/voca.fi/pkg/settings"
	"github.com/Mazzz-zzz/voca.fi/pkg/swap"
	"github.com/Mazzz-zzz/voca.fi/pkg/token"
	"github.com/Mazzz-zzz/voca.fi/pkg/wallet"
)

// app bundles the wired components every command draws from.
type app struct {
	cfg           *config.Config
	log           *logrus.Logger
	enso          *enso.Client
	resolver      *token.Resolver
	preparer      *swap.Preparer
	queue         *swap.Queue
	settings      *settings.Settings
	settingsStore *settings.FileStore
	exec          *executor.Executor
}

// newApp loads configuration and wires the shared components. The wallet
// side (signer, executor, preparer) is only built when a private key is
// configured; needWallet makes its absence fatal.
func newApp(ctx context.Context, needWallet bool, approve executor.ApproveFunc) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	ensoClient := enso.NewClient(cfg.EnsoBaseURL, cfg.EnsoAPIKey, log)

	var cache token.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		c, err := token.NewRedisCache(rdb, 0, log)
		if err != nil {
			return nil, err
		}
		cache = c
	}
	resolver := token.NewResolver(ensoClient, cache, cfg.ChainID, log)

	settingsStore, err := settings.NewFileStore(cfg.SettingsPath)
	if err != nil {
		return nil, err
	}
	userSettings, err := settingsStore.Load()
	if err != nil {
		return nil, err
	}

	queueStore, err := swap.NewFileStore(cfg.QueuePath)
	if err != nil {
		return nil, err
	}
	queue, err := swap.NewQueue(queueStore, log)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:           cfg,
		log:           log,
		enso:          ensoClient,
		resolver:      resolver,
		queue:         queue,
		settings:      userSettings,
		settingsStore: settingsStore,
	}

	if cfg.PrivateKey == "" {
		if needWallet {
			return nil, fmt.Errorf("no wallet configured. Please set VOCA_PRIVATE_KEY")
		}
		return a, nil
	}

	signer, err := wallet.NewSigner(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	exec, err := executor.New(ctx, executor.Config{
		RPCURL:      cfg.RPCURL,
		ChainID:     cfg.ChainID,
		Signer:      signer,
		Bundler:     ensoClient,
		SlippageBps: cfg.SlippageBps,
		Approve:     approve,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}

	a.exec = exec
	a.preparer = swap.NewPreparer(resolver, ensoClient, cfg.ChainID, signer.Address().Hex(), cfg.SlippageBps, log)
	return a, nil
}

// close releases held connections.
func (a *app) close() {
	if a.exec != nil {
		a.exec.Close()
	}
}

// openAIKey prefers the key stored in settings over the environment.
func (a *app) openAIKey() string {
	if a.settings.APIKey != "" {
		return a.settings.APIKey
	}
	return a.cfg.OpenAIAPIKey
}
