package business

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/blog-client/internal/blogapi"
	"github.com/openkcm/blog-client/internal/business/server"
	"github.com/openkcm/blog-client/internal/config"
	"github.com/openkcm/blog-client/internal/navigation"
	"github.com/openkcm/blog-client/internal/profile"
	"github.com/openkcm/blog-client/internal/session"
	sessionfile "github.com/openkcm/blog-client/internal/session/file"
	sessionsql "github.com/openkcm/blog-client/internal/session/sql"
	sessionvalkey "github.com/openkcm/blog-client/internal/session/valkey"
)

// Main restores the session and serves the views until ctx is done.
func Main(ctx context.Context, cfg *config.Config) error {
	slot, closeFn, err := openSlot(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening the token store: %w", err)
	}
	defer closeFn()

	backend := blogapi.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout,
		blogapi.WithUserAgent(cfg.Application.Name),
	)
	profiles := profile.NewCache(backend, cfg.Views.ProfileCacheTTL)

	transitions, err := server.NewTransitionListener(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating the session metrics: %w", err)
	}

	store := session.NewStore(slot, backend, navigation.NewNavigator(),
		session.WithTransitionListener(transitions),
		session.WithTransitionListener(profiles.OnTransition),
	)
	store.Start(ctx)

	return server.StartHTTPServer(ctx, cfg, server.Deps{
		Backend:  backend,
		Profiles: profiles,
		Session:  store,
	})
}

// LogoutMain removes the persisted token so that the next start is anonymous.
func LogoutMain(ctx context.Context, cfg *config.Config) error {
	slot, closeFn, err := openSlot(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening the token store: %w", err)
	}
	defer closeFn()

	if err := slot.Delete(ctx, session.TokenKey); err != nil && !errors.Is(err, session.ErrSlotEmpty) {
		return fmt.Errorf("deleting the persisted token: %w", err)
	}

	slogctx.Info(ctx, "Persisted token removed", "store", string(cfg.TokenStore.Type))

	return nil
}

// openSlot creates the durable slot configured by tokenStore.type.
func openSlot(ctx context.Context, cfg *config.Config) (_ session.Slot, closeFn func(), _ error) {
	switch cfg.TokenStore.Type {
	case config.TokenStoreFile, "":
		path := os.ExpandEnv(cfg.TokenStore.File.Path)
		slogctx.Debug(ctx, "Using the file token store", "path", path)

		return sessionfile.NewSlot(path), func() {}, nil
	case config.TokenStoreValKey:
		opts, err := config.MakeValKeyOption(cfg.ValKey)
		if err != nil {
			return nil, nil, err
		}

		client, err := valkey.NewClient(opts)
		if err != nil {
			return nil, nil, fmt.Errorf("creating a new valkey client: %w", err)
		}

		return sessionvalkey.NewSlot(client, cfg.ValKey.Prefix), client.Close, nil
	case config.TokenStorePostgres:
		connStr, err := config.MakeConnStr(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("making dsn from config: %w", err)
		}

		poolCfg, err := pgxpool.ParseConfig(connStr)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing pgxpool config: %w", err)
		}
		poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

		db, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("initialising pgxpool connection: %w", err)
		}

		return sessionsql.NewSlot(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownTokenStore, cfg.TokenStore.Type)
	}
}
