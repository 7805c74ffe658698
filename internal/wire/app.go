package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	llmadapter "github.com/alanyang/project-chat/internal/adapter/llm"
	"github.com/alanyang/project-chat/internal/adapter/memory"
	pgdb "github.com/alanyang/project-chat/internal/adapter/postgres"
	pgeventbus "github.com/alanyang/project-chat/internal/adapter/postgres/eventbus"
	pgidempotency "github.com/alanyang/project-chat/internal/adapter/postgres/idempotency"
	pglocker "github.com/alanyang/project-chat/internal/adapter/postgres/locker"
	pgmessage "github.com/alanyang/project-chat/internal/adapter/postgres/message"
	pgproject "github.com/alanyang/project-chat/internal/adapter/postgres/project"
	pgprompt "github.com/alanyang/project-chat/internal/adapter/postgres/prompt"
	"github.com/alanyang/project-chat/internal/adapter/sqlite"
	"github.com/alanyang/project-chat/internal/config"
	"github.com/alanyang/project-chat/internal/metrics"
	porteventbus "github.com/alanyang/project-chat/internal/port/eventbus"
	portidempotency "github.com/alanyang/project-chat/internal/port/idempotency"
	portlocker "github.com/alanyang/project-chat/internal/port/locker"
	portmessage "github.com/alanyang/project-chat/internal/port/message"
	portproject "github.com/alanyang/project-chat/internal/port/project"
	portprompt "github.com/alanyang/project-chat/internal/port/prompt"

	chatsvc "github.com/alanyang/project-chat/internal/service/chat"
	projectsvc "github.com/alanyang/project-chat/internal/service/project"
	promptsvc "github.com/alanyang/project-chat/internal/service/prompt"

	"github.com/alanyang/project-chat/internal/transport"
	mcptransport "github.com/alanyang/project-chat/internal/transport/mcp"
)

const sweepInterval = 10 * time.Minute

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Server *http.Server

	closers []func()
}

// Close releases storage and bus resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// stores is everything a storage driver has to provide.
type stores struct {
	projects portproject.Repository
	prompts  portprompt.Repository
	messages portmessage.Repository
	bus      porteventbus.EventBus
	locker   portlocker.AdvisoryLocker
	idem     portidempotency.Store
	purge    func(ctx context.Context) (int64, error)
	closers  []func()
}

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	// ── Storage ──────────────────────────────────────────────────────────────
	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{closers: st.closers}

	// ── Metrics ──────────────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// ── Provider ─────────────────────────────────────────────────────────────
	provider, err := llmadapter.New(ctx, cfg.Provider)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("building %s provider: %w", cfg.Provider.Name, err)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	projectSvcInstance := projectsvc.NewService(st.projects)
	promptSvcInstance := promptsvc.NewService(st.prompts, projectSvcInstance, st.bus)

	chatOpts := []chatsvc.Option{chatsvc.WithMetrics(m)}
	if cfg.Chat.SerializePerProject {
		chatOpts = append(chatOpts, chatsvc.WithLocker(st.locker))
	}
	if cfg.Chat.DedupeInbound {
		chatOpts = append(chatOpts, chatsvc.WithInboundDedup())
	}
	chatSvcInstance := chatsvc.NewService(
		projectSvcInstance,
		st.messages,
		st.prompts,
		llmadapter.Instrument(cfg.Provider.Name, provider, m),
		st.bus,
		chatOpts...,
	)

	mcpServer := mcptransport.New(projectSvcInstance, promptSvcInstance, chatSvcInstance)

	// ── Transport ─────────────────────────────────────────────────────────────
	router := transport.NewRouter(
		ctx,
		projectSvcInstance,
		promptSvcInstance,
		chatSvcInstance,
		st.bus,
		st.idem,
		m,
		reg,
		mcpServer,
	)

	app.Server = &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	startSweeper(ctx, sweepInterval, st.purge)

	slog.Info("application wired",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Driver,
		"provider", cfg.Provider.Name,
		"serialize_per_project", cfg.Chat.SerializePerProject,
		"dedupe_inbound", cfg.Chat.DedupeInbound,
	)
	return app, nil
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return stores{}, fmt.Errorf("opening sqlite: %w", err)
		}
		idem := memory.NewIdempotencyStore(cfg.Chat.IdempotencyTTL)
		return stores{
			projects: sqlite.NewProjectRepository(db),
			prompts:  sqlite.NewPromptRepository(db),
			messages: sqlite.NewMessageRepository(db),
			bus:      memory.NewEventBus(64),
			locker:   memory.NewLocker(),
			idem:     idem,
			purge: func(context.Context) (int64, error) {
				return int64(idem.Sweep()), nil
			},
			closers: []func(){func() { db.Close() }},
		}, nil

	default:
		pool, err := pgdb.Connect(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return stores{}, fmt.Errorf("connecting to database: %w", err)
		}
		if err := pgdb.Migrate(ctx, pool); err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("migrating database: %w", err)
		}
		bus := pgeventbus.New(pool)
		idem := pgidempotency.New(pool)
		return stores{
			projects: pgproject.New(pool),
			prompts:  pgprompt.New(pool),
			messages: pgmessage.New(pool),
			bus:      bus,
			locker:   pglocker.New(pool),
			idem:     idem,
			purge: func(ctx context.Context) (int64, error) {
				return idem.Purge(ctx, time.Now().Add(-cfg.Chat.IdempotencyTTL))
			},
			closers: []func(){pool.Close, bus.Close},
		}, nil
	}
}

// Migrate applies the schema for the configured driver and exits. SQLite
// applies its schema on open.
func Migrate(ctx context.Context, cfg config.Config) error {
	if cfg.Storage.Driver == config.DriverSQLite {
		db, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return fmt.Errorf("opening sqlite: %w", err)
		}
		return db.Close()
	}

	pool, err := pgdb.Connect(ctx, cfg.Storage.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()
	return pgdb.Migrate(ctx, pool)
}
