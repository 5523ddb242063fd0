package cmd

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"tickethub-cli/auth"
	"tickethub-cli/catalog"
	"tickethub-cli/checkout"
	"tickethub-cli/config"
	"tickethub-cli/logging"
	"tickethub-cli/seating"
	"tickethub-cli/service"
	"tickethub-cli/store"
)

// environment is the dependency set shared by every command of one run.
type environment struct {
	v        *viper.Viper
	bindErrs []error

	cfg       *config.Config
	log       *zap.Logger
	client    *service.Client
	auth      *auth.Manager
	catalog   *catalog.Reader
	seats     *seating.Loader
	selection *seating.Selection
	drafts    store.DraftStore
	checkout  *checkout.Checkout
	now       func() time.Time
}

func newEnvironment(v *viper.Viper) *environment {
	return &environment{v: v, now: time.Now}
}

func (e *environment) bind(key string, flag *pflag.Flag) {
	if err := e.v.BindPFlag(key, flag); err != nil {
		e.bindErrs = append(e.bindErrs, fmt.Errorf("bind %s: %w", key, err))
	}
}

func (e *environment) setup(cmd *cobra.Command) error {
	if len(e.bindErrs) > 0 {
		return e.bindErrs[0]
	}
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(e.v)
	if err != nil {
		return err
	}
	e.cfg = cfg

	logDir := cfg.App.LogPath
	if logDir == "" {
		logDir = logging.DefaultDir()
	}
	// The storefront owns the terminal, so only subcommands echo logs.
	var console io.Writer
	if cfg.App.Debug && cmd != cmd.Root() {
		console = cmd.ErrOrStderr()
	}
	log, err := logging.New(logging.Options{Dir: logDir, Debug: cfg.App.Debug, Console: console})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	e.log = log.With(zap.String("command", cmd.Name()))

	e.client = service.NewClient(&http.Client{Timeout: cfg.HTTP.Timeout}, cfg.HTTP.BaseURL)
	e.auth = auth.NewManager(e.client, auth.FilePersister{}, e.log)
	e.catalog = catalog.NewReader(e.client, catalog.FileCache{}, catalog.ReaderOptions{
		CacheTTL:          cfg.Catalog.CacheTTL,
		PosterPlaceholder: cfg.Catalog.PosterPlaceholder,
	}, e.log)
	e.seats = seating.NewLoader(e.client, e.log, cfg.HTTP.Timeout)
	e.selection = seating.NewSelection()
	e.drafts = store.NewFileDraft()
	e.checkout = checkout.New(e.client, e.selection, e.drafts, e.log)

	e.log.Debug("configured", zap.String("base_url", cfg.HTTP.BaseURL), zap.Duration("timeout", cfg.HTTP.Timeout))
	return nil
}

func (e *environment) close() {
	if e.log != nil {
		_ = e.log.Sync()
	}
}
