package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/albertocavalcante/go-openregister"
	"github.com/albertocavalcante/go-openregister/internal/tracing"
)

// app carries the state shared by every command of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	// httpClient overrides the catalog's transport when set.
	httpClient *http.Client

	v       *viper.Viper
	cfgFile string
	cfg     Config

	log     *slog.Logger
	catalog *openregister.Catalog
	tracer  *tracing.Provider
	closers []io.Closer
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut, v: viper.New()}
}

// execute runs the command line and releases everything the run opened.
func (a *app) execute(ctx context.Context, args []string) error {
	cmd := a.rootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)
	err := cmd.ExecuteContext(ctx)
	return errors.Join(err, a.close(context.WithoutCancel(ctx)))
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "openregister",
		Short: "Query the Open Register platform",
		Long: `Query the UK Government's Open Register platform.

Without a subcommand, prints the resolved organisation of every record in
every register that declares an organisation field.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.NoArgs,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printFieldValues(cmd.Context(), defaultField)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ~/.config/openregister/config.yaml)")
	flags.StringP("phase", "p", "", "register phase: discovery, alpha or beta")
	flags.Bool("debug", false, "log requests and cache activity to stderr")
	flags.String("cache", "", "response cache: none, memory, sqlite or redis")
	flags.Bool("trace", false, "export a span per request")

	_ = a.v.BindPFlag("phase", flags.Lookup("phase"))
	_ = a.v.BindPFlag("debug", flags.Lookup("debug"))
	_ = a.v.BindPFlag("cache.backend", flags.Lookup("cache"))
	_ = a.v.BindPFlag("tracing.enabled", flags.Lookup("trace"))

	root.AddCommand(
		a.fieldValuesCommand(),
		a.checkCommand(),
		a.recordsCommand(),
		a.diffCommand(),
	)
	return root
}

// setup loads the configuration and builds the catalog for the command.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := a.loadConfig(); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := slog.LevelWarn
	if a.cfg.Debug {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))

	tracer, err := tracing.NewProvider(a.cfg.Tracing, a.errOut)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	a.tracer = tracer

	store, closer, err := openStore(a.cfg.Cache)
	if err != nil {
		return fmt.Errorf("opening %s cache: %w", a.cfg.Cache.Backend, err)
	}
	a.closers = append(a.closers, closer)

	opts := append(a.cfg.catalogOptions(),
		openregister.WithCache(store),
		openregister.WithTracerProvider(tracer.TracerProvider()),
		openregister.WithLogger(a.log),
	)
	if a.httpClient != nil {
		opts = append(opts, openregister.WithHTTPClient(a.httpClient))
	}

	a.catalog, err = openregister.NewCatalog(opts...)
	if err != nil {
		return err
	}
	a.log.Debug("catalog ready",
		"phase", a.cfg.Phase,
		"cache", a.cfg.Cache.Backend,
		"config", a.v.ConfigFileUsed())
	return nil
}

func (a *app) loadConfig() error {
	defaults := Defaults()
	a.v.SetDefault("phase", defaults.Phase)
	a.v.SetDefault("base_domain", defaults.BaseDomain)
	a.v.SetDefault("timeout", defaults.Timeout)
	a.v.SetDefault("page_size", defaults.PageSize)
	a.v.SetDefault("max_resolve_depth", defaults.MaxResolveDepth)
	a.v.SetDefault("dead_registers", defaults.DeadRegisters)
	a.v.SetDefault("debug", defaults.Debug)
	a.v.SetDefault("cache.backend", defaults.Cache.Backend)
	a.v.SetDefault("cache.path", defaults.Cache.Path)
	a.v.SetDefault("cache.redis_url", defaults.Cache.RedisURL)
	a.v.SetDefault("cache.ttl", defaults.Cache.TTL)
	a.v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	a.v.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	a.v.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	a.v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	a.v.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	a.v.SetEnvPrefix("OPENREGISTER")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, _ := os.UserHomeDir()
		a.v.AddConfigPath(filepath.Join(home, ".config", "openregister"))
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.tracer != nil {
		errs = append(errs, a.tracer.Shutdown(ctx))
	}
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
