package commands

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"gaiaharvest/internal/collector"
	"gaiaharvest/internal/components/chrono"
	"gaiaharvest/internal/components/telemetry"
	"gaiaharvest/internal/scrapers/bga"
	"gaiaharvest/internal/store"
	"gaiaharvest/internal/store/db"
	"gaiaharvest/pkg/restyutil"
	"gaiaharvest/pkg/sqliteutil"
	"gaiaharvest/pkg/textutil"
)

// app is everything a command may need, built from the config.
type app struct {
	config Config
	tel    telemetry.API
	clock  chrono.API
	otel   telemetry.Otel
	db     *sql.DB
	store  store.Store
	// client is only set by openApp(ctx, true).
	client *bga.Client
}

func openApp(ctx context.Context, withClient bool) (*app, error) {
	// a config path given on the command line is taken as is
	config, err := readConfig(*configPath, !rootCmd.PersistentFlags().Changed("config"))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	otel, err := telemetry.SetupOtel(ctx, "harvest", config.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("setup telemetry: %w", err)
	}

	database, err := sqliteutil.OpenDB(config.Database, db.Schema)
	if err != nil {
		otel.Shutdown(context.Background())
		return nil, err
	}

	clock := chrono.NewStandardImpl(time.Local)
	a := &app{
		config: config,
		tel:    telemetry.SlogAPI{},
		clock:  clock,
		otel:   otel,
		db:     database,
		store:  store.NewStore(database, clock),
	}
	if !withClient {
		return a, nil
	}

	err = a.login(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) login(ctx context.Context) error {
	if a.config.Username == "" || a.config.Password == "" {
		return fmt.Errorf("no BGA credentials, set them in the config or through BGA_USERNAME and BGA_PASSWORD")
	}

	opts := bga.ClientOptions{
		BaseUrl:           a.config.BaseUrl,
		RequestsPerSecond: a.config.RequestsPerSecond,
		BypassCloudflare:  a.config.BypassCloudflare,
	}
	if *dumpHttp != "" {
		output, err := restyutil.NewFilesystemOutput(*dumpHttp)
		if err != nil {
			return fmt.Errorf("create http dump directory: %w", err)
		}
		opts.HttpOutput = output
	}

	client, err := bga.NewClient(opts, a.tel)
	if err != nil {
		return err
	}
	session, err := client.Authenticate(ctx, a.config.Username, a.config.Password)
	if err != nil {
		client.Close()
		return err
	}
	slog.Info("logged in", "user", session.Username, "user_id", session.UserID)
	a.client = client
	return nil
}

func (a *app) newCollector() (*collector.Collector, error) {
	opts := collector.DefaultOptions()
	opts.GameID = a.config.GameID
	opts.Clock = a.clock
	opts.Pacer = collector.FixedDelay{
		Clock:     a.clock,
		Between:   a.config.delay(),
		Secondary: a.config.secondaryDelay(),
	}
	opts.MaxPages = a.config.MaxPages
	if a.config.MaxConsecutivePageFailures > 0 {
		opts.MaxConsecutivePageFailures = a.config.MaxConsecutivePageFailures
	}
	if a.config.MaxConsecutiveMatchFailures != nil {
		opts.MaxConsecutiveMatchFailures = *a.config.MaxConsecutiveMatchFailures
	}
	opts.Progress = func(msg string) {
		slog.Info(msg)
	}
	return collector.New(a.client, a.store, opts, a.tel)
}

// resolvePlayer turns a player id or name into a target, names are looked up
// on BGA.
func (a *app) resolvePlayer(ctx context.Context, query string) (collector.PlayerTarget, error) {
	if textutil.IsNumeric(query) {
		var id int64
		_, err := fmt.Sscan(query, &id)
		if err != nil {
			return collector.PlayerTarget{}, err
		}
		return collector.PlayerTarget{ID: id}, nil
	}

	refs, err := a.client.SearchPlayer(ctx, query)
	if err != nil {
		return collector.PlayerTarget{}, fmt.Errorf("search player: %w", err)
	}
	ref, ok := bga.BestPlayerMatch(query, refs)
	if !ok {
		return collector.PlayerTarget{}, fmt.Errorf("no player named '%s'", query)
	}
	return collector.PlayerTarget{ID: ref.ID, Name: ref.Name}, nil
}

// topPlayers returns the first `count` players of the ELO ranking.
func (a *app) topPlayers(ctx context.Context, count int) ([]collector.PlayerTarget, error) {
	var targets []collector.PlayerTarget
	for len(targets) < count {
		refs, err := a.client.FetchRanking(ctx, a.config.GameID, len(targets), bga.RankingElo)
		if err != nil {
			return nil, fmt.Errorf("fetch ranking: %w", err)
		}
		if len(refs) == 0 {
			break
		}
		for _, ref := range refs {
			if len(targets) == count {
				break
			}
			targets = append(targets, collector.PlayerTarget{ID: ref.ID, Name: ref.Name})
		}
	}
	return targets, nil
}

func (a *app) Close() {
	if a.client != nil {
		a.client.Close()
	}
	a.db.Close()
	err := a.otel.Shutdown(context.Background())
	if err != nil {
		slog.Warn("failed to shutdown telemetry", "err", err)
	}
}
