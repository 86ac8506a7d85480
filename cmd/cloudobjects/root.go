package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cloudobjects/cloudobjects-go/config"
	"github.com/cloudobjects/cloudobjects-go/observe"
	"github.com/cloudobjects/cloudobjects-go/retriever"
)

// app holds the global flags shared by subcommands.
type app struct {
	configPath string
	logLevel   string
	marker     string

	out    io.Writer
	errOut io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "cloudobjects",
		Short: "Inspect COIDs and AAUIDs and resolve CloudObjects objects",
		Long: `cloudobjects parses CloudObjects identifiers and resolves object
descriptions and attachments through the Object API, using the same cache
tiers as the SDK.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file path (default $CLOUDOBJECTS_CONFIG)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug|info|warn|error")
	flags.StringVar(&a.marker, "marker", "", "freshness marker for cached entries")

	root.AddCommand(
		a.coidCmd(),
		a.aauidCmd(),
		a.getCmd(),
		a.attachmentCmd(),
		a.lsCmd(),
		a.healthCmd(),
		a.schemaCmd(),
		a.validateCmd(),
	)
	return root
}

// session is a configured Retriever plus its telemetry.
type session struct {
	cfg      config.Config
	obs      observe.Observer
	resolver *retriever.Retriever
}

func (s *session) Close(ctx context.Context) {
	_ = s.resolver.Close()
	_ = s.obs.Shutdown(ctx)
}

func (a *app) session(ctx context.Context) (*session, error) {
	cfg, err := config.Load(ctx, a.configPath)
	if err != nil {
		return nil, err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}

	ocfg := cfg.ObserveConfig(version)
	ocfg.Output = a.errOut
	obs, err := observe.NewObserver(ctx, ocfg)
	if err != nil {
		return nil, err
	}

	r, err := retriever.New(cfg, retriever.WithObserver(obs))
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}
	return &session{cfg: cfg, obs: obs, resolver: r}, nil
}

// context applies the --marker flag.
func (a *app) context(ctx context.Context) context.Context {
	if a.marker == "" {
		return ctx
	}
	return retriever.WithFreshness(ctx, a.marker)
}
