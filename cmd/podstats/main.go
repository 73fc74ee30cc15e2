package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"podstats-discord-bot/internal/bot"
	"podstats-discord-bot/internal/config"
	"podstats-discord-bot/internal/controller"
	"podstats-discord-bot/internal/conversation"
	"podstats-discord-bot/internal/guilds"
	"podstats-discord-bot/internal/health"
	"podstats-discord-bot/internal/logging"
	"podstats-discord-bot/internal/sheets"
	"podstats-discord-bot/internal/version"
)

// workbooks adapts the Sheets client to the controller's backend interface.
type workbooks struct {
	*sheets.Client
}

func (w workbooks) Open(ctx context.Context, sheetID string) (controller.Backend, error) {
	wb, err := w.Client.Open(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	return wb, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", err, nil)
	}
	if err := logging.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		logging.Fatal("invalid log settings", err, nil)
	}
	logging.Info("starting pod stats bot", logging.Fields{"version": version.String()})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := guilds.Open(cfg.DBPath)
	if err != nil {
		logging.Fatal("failed to open guild store", err, logging.Fields{"path": cfg.DBPath})
	}
	defer store.Close()

	imported, err := store.ImportLegacy(ctx, cfg.LegacyChannelsFile, cfg.LegacySheetsFile)
	if err != nil {
		logging.Fatal("failed to import legacy guild files", err, nil)
	}
	if imported > 0 {
		logging.Info("imported legacy guild bindings", logging.Fields{"count": imported})
	}
	bindings, err := store.List(ctx)
	if err != nil {
		logging.Fatal("failed to list guild bindings", err, nil)
	}
	logging.Info("loaded guild bindings", logging.Fields{
		"guilds":     len(bindings),
		"configured": lo.CountBy(bindings, func(b guilds.Binding) bool { return b.SheetID != "" }),
	})

	client, err := sheets.NewClient(ctx, cfg.GoogleCredentialsFile, cfg.TemplateSheetID)
	if err != nil {
		logging.Fatal("failed to create google client", err, logging.Fields{"credentials": cfg.GoogleCredentialsFile})
	}

	ctl := controller.New(store, workbooks{client}, controller.Options{
		PodSize: cfg.PodSize,
		Cutoff:  cfg.MatchCutoff,
		Timeouts: conversation.Timeouts{
			Roster:  cfg.RosterTimeout,
			Collect: cfg.CollectTimeout,
			Confirm: cfg.ConfirmTimeout,
		},
		TableInterval: cfg.TableInterval,
	})

	b, err := bot.New(cfg.DiscordToken, ctl)
	if err != nil {
		logging.Fatal("failed to create bot", err, nil)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.Run(gctx)
	})
	g.Go(func() error {
		return health.Serve(gctx, cfg.HealthAddr, health.Router(health.Status{
			Connected:   b.Connected,
			ActiveGames: ctl.ActiveGames,
		}))
	})
	if err := g.Wait(); err != nil {
		logging.Error("bot stopped", err, nil)
		return
	}
	logging.Info("bot stopped", nil)
}
