package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studyagent/internal/config"
	"github.com/abhisek/studyagent/internal/evaluation"
	"github.com/abhisek/studyagent/internal/ingest"
	"github.com/abhisek/studyagent/internal/llm"
	"github.com/abhisek/studyagent/internal/lock"
	"github.com/abhisek/studyagent/internal/logging"
	"github.com/abhisek/studyagent/internal/mastery"
	"github.com/abhisek/studyagent/internal/notify"
	"github.com/abhisek/studyagent/internal/questiongen"
	"github.com/abhisek/studyagent/internal/session"
	"github.com/abhisek/studyagent/internal/store"
)

// env holds everything a command needs. Close releases it in reverse
// order of acquisition.
type env struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     *store.Store
	provider  llm.Provider
	questions *questiongen.Generator
	grader    *evaluation.Evaluator
	orch      *session.Orchestrator
	closers   []func() error
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.logger.Warn("close", zap.Error(err))
		}
	}
	_ = e.logger.Sync()
}

// openStoreEnv loads configuration and opens the database only.
func openStoreEnv(cmd *cobra.Command) (*env, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, logger: logger}

	dsn, err := resolveDSN(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.OpenDriver(cmd.Context(), cfg.Store.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.store = st
	e.closers = append(e.closers, st.Close)
	return e, nil
}

// openEnv builds the full study stack. Without a configured LLM provider
// commands that need one fail; the rest run with the provider unset.
func openEnv(cmd *cobra.Command, needLLM bool) (*env, error) {
	e, err := openStoreEnv(cmd)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()

	if err := e.openProvider(ctx); err != nil {
		if needLLM {
			e.Close()
			return nil, fmt.Errorf("LLM provider not configured: %w", err)
		}
		e.logger.Debug("LLM provider unavailable", zap.Error(err))
	}

	locker, err := e.openLocker(ctx)
	if err != nil {
		e.Close()
		return nil, err
	}

	qcfg := questiongen.DefaultConfig()
	qcfg.Style = questiongen.Style(e.cfg.Study.QuestionStyle)
	qcfg.ReviewProbability = e.cfg.Study.ReviewProbability
	e.questions = questiongen.New(e.provider, qcfg, questiongen.WithLogger(e.logger))
	e.grader = evaluation.New(e.provider, evaluation.DefaultConfig(), e.logger)

	scfg := session.DefaultConfig()
	scfg.EvalMode = session.EvalMode(e.cfg.Study.EvalMode)

	deps := session.Deps{
		Repo:      e.store.Repo(),
		Questions: e.questions,
		Grader:    e.grader,
		Provider:  e.provider,
		Mastery:   mastery.NewService(mastery.NewScheduler(e.cfg.Policy())),
		Locker:    locker,
		Publisher: e.openPublisher(),
		Logger:    e.logger,
	}
	if e.provider != nil {
		deps.Extractor = ingest.New(e.provider, ingest.DefaultConfig(), e.logger)
	}
	e.orch = session.New(deps, scfg)
	return e, nil
}

func (e *env) openProvider(ctx context.Context) error {
	cfg := e.cfg.ProviderConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	p, err := llm.NewProvider(ctx, cfg, e.store.EventRepo(), e.logger)
	if err != nil {
		return err
	}
	e.provider = p
	return nil
}

// openLocker uses Redis when an address is configured so several
// processes can share one database.
func (e *env) openLocker(ctx context.Context) (lock.Locker, error) {
	if e.cfg.Lock.RedisAddr == "" {
		return lock.NewLocal(), nil
	}
	r, err := lock.NewRedis(ctx, lock.RedisConfig{
		Addr: e.cfg.Lock.RedisAddr,
		TTL:  e.cfg.LockTTL(),
	}, e.logger)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, r.Close)
	return r, nil
}

// openPublisher falls back to a no-op publisher when the broker is
// unreachable; events are best effort.
func (e *env) openPublisher() notify.Publisher {
	if e.cfg.Notify.AMQPURL == "" {
		return notify.Nop{}
	}
	p, err := notify.NewAMQPPublisher(e.cfg.Notify.AMQPURL, e.cfg.Notify.Exchange, e.logger)
	if err != nil {
		e.logger.Warn("event publishing disabled", zap.Error(err))
		return notify.Nop{}
	}
	e.closers = append(e.closers, p.Close)
	return p
}

// resolveDSN returns the database location using --db (highest priority),
// then the configured DSN, then the default SQLite path.
func resolveDSN(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if cfg.Store.Driver == store.DriverPostgres {
			return p, nil
		}
		return p, store.EnsureDir(p)
	}
	if cfg.Store.DSN != "" {
		return cfg.Store.DSN, nil
	}
	if cfg.Store.Driver == store.DriverPostgres {
		return "", errors.New("postgres requires a DSN")
	}
	return store.DefaultDBPath()
}
