package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mirrorsensei/sensei/internal/config"
	"github.com/mirrorsensei/sensei/internal/llm"
	"github.com/mirrorsensei/sensei/internal/logging"
	"github.com/mirrorsensei/sensei/internal/store"
	"github.com/mirrorsensei/sensei/internal/tutor"
)

// deps is everything a command needs, built from flags and configuration.
type deps struct {
	cfg     *config.Config
	log     *logging.Logger
	prompts store.PromptRepo
	history store.HistoryRepo
	events  store.EventRepo
	service *tutor.Service

	// llmErr is why no generation backend is available, if it isn't.
	llmErr error

	closers []func() error
}

type depsOptions struct {
	// logToFile sends logs to a file so they don't draw over the TUI.
	logToFile bool
	// withLLM builds the generation backend and the tutor service.
	withLLM bool
}

func buildDeps(cmd *cobra.Command, opts depsOptions) (*deps, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	d := &deps{cfg: cfg}
	ok := false
	defer func() {
		if !ok {
			d.Close()
		}
	}()

	ephemeral, _ := cmd.Flags().GetBool("ephemeral")

	logFile := cfg.Log.File
	if logFile == "" && opts.logToFile {
		if logFile, err = defaultLogPath(cmd, ephemeral); err != nil {
			return nil, fmt.Errorf("resolve log path: %w", err)
		}
	}
	if d.log, err = logging.New(cfg.Log.Mode, logFile); err != nil {
		return nil, err
	}
	d.closers = append(d.closers, func() error { d.log.Sync(); return nil })

	if ephemeral {
		mem := store.NewMemory()
		d.prompts, d.history, d.events = mem.PromptRepo(), mem.HistoryRepo(), mem.EventRepo()
	} else {
		dbPath, err := resolveDBPath(cmd, cfg)
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		d.closers = append(d.closers, st.Close)
		d.prompts, d.history, d.events = st.PromptRepo(), st.HistoryRepo(), st.EventRepo()
		d.log.Debug("store opened", "path", dbPath)
	}

	if opts.withLLM {
		provider := d.buildProvider(cmd)
		tcfg := tutor.DefaultConfig()
		tcfg.MaxTokens = cfg.LLM.MaxTokens
		gen := tutor.NewGenerator(provider, tcfg, d.log)
		d.service = tutor.NewService(d.prompts, d.history, gen, d.log)
	}

	ok = true
	return d, nil
}

// buildProvider returns the configured backend, or an unconfigured stand-in
// whose calls fail so the usual fallback text is shown.
func (d *deps) buildProvider(cmd *cobra.Command) llm.Provider {
	lcfg, ok := d.cfg.LLM.ProviderConfig()
	if !ok {
		d.llmErr = errors.New("no LLM API key found")
		d.log.Warn("LLM provider not configured", "error", d.llmErr)
		return &llm.UnconfiguredProvider{Reason: d.llmErr}
	}
	p, err := llm.NewProvider(cmd.Context(), lcfg, d.events, d.log)
	if err != nil {
		d.llmErr = err
		d.log.Warn("LLM provider not configured", "error", err)
		return &llm.UnconfiguredProvider{Reason: err}
	}
	d.log.Info("LLM provider ready", "provider", lcfg.Provider, "model", p.ModelID())
	return p
}

// warnIfNoLLM tells the user why answers will be fallback text.
func (d *deps) warnIfNoLLM() {
	if d.llmErr != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", d.llmErr)
		fmt.Fprintln(os.Stderr, "AI features will be unavailable.")
	}
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i]()
	}
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the db config key, then SENSEI_DB and the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

// defaultLogPath puts sensei.log next to the database, or in the temp
// directory for an ephemeral run.
func defaultLogPath(cmd *cobra.Command, ephemeral bool) (string, error) {
	if ephemeral {
		return filepath.Join(os.TempDir(), "sensei.log"), nil
	}
	dbPath, err := store.DefaultDBPath()
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		dbPath, err = p, store.EnsureDir(p)
	}
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(dbPath), "sensei.log"), nil
}
