package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kankokujin/kankokujin-no-map/internal/adapters/osuapi"
	"github.com/kankokujin/kankokujin-no-map/internal/adapters/repository"
	"github.com/kankokujin/kankokujin-no-map/internal/config"
	"github.com/kankokujin/kankokujin-no-map/internal/ingest"
	"github.com/kankokujin/kankokujin-no-map/pkg/logger"
)

type flags struct {
	full       bool
	dataFile   string
	stateFile  string
	configFile string
	baseURL    string
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "fetch-mappers [--full] [--data <mappers.json>] [--state <fetch-state.json>] [--config <config.yaml>]",
		Short: "Fetches beatmaps of Korean mappers from the osu! API and writes the data file.",
		Long: `fetch-mappers refreshes every known and allow-listed mapper, discovers new
creators from recently ranked beatmaps, and writes the consolidated data file
and the incremental fetch state once at the end.

The osu! API key is read from KMAP_OSU_API_KEY or OSU_API_KEY.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, &f)
		},
	}
	cmd.Flags().BoolVar(&f.full, "full", false, "Refetch every mapper's complete history.")
	cmd.Flags().StringVar(&f.dataFile, "data", "", "Data file to update (default from config).")
	cmd.Flags().StringVar(&f.stateFile, "state", "", "Fetch state file (default from config).")
	cmd.Flags().StringVar(&f.configFile, "config", "", "YAML config file (default $KMAP_CONFIG).")
	cmd.Flags().StringVar(&f.baseURL, "api-url", "", "osu! API base URL (default from config).")
	return cmd
}

func run(cmd *cobra.Command, f *flags) error {
	ctx := cmd.Context()

	var (
		cfg *config.Config
		err error
	)
	if f.configFile != "" {
		cfg, err = config.LoadFile(ctx, f.configFile)
	} else {
		cfg, err = config.Load(ctx)
	}
	if err != nil {
		return err
	}
	if f.dataFile != "" {
		cfg.DataFile = f.dataFile
	}
	if f.stateFile != "" {
		cfg.StateFile = f.stateFile
	}
	if f.baseURL != "" {
		cfg.OsuBaseURL = f.baseURL
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}
	log := logger.Get().Named("fetch-mappers")

	client, err := osuapi.New(cfg.OsuAPIKey,
		osuapi.WithBaseURL(cfg.OsuBaseURL),
		osuapi.WithMaxAttempts(cfg.MaxAttempts),
		osuapi.WithRetryBackoff(cfg.RetryBackoff()),
		osuapi.WithRequestInterval(cfg.RequestInterval()),
		osuapi.WithPageLimit(cfg.PageLimit),
		osuapi.WithLogger(log.Named("osuapi")),
	)
	if err != nil {
		return fmt.Errorf("osu! API client: %w", err)
	}

	store := repository.NewFileStore(cfg.DataFile, cfg.StateFile, repository.WithLogger(log))
	runner := ingest.NewRunner(client, store,
		ingest.NewGate(cfg.TargetCountry, cfg.AllowList, cfg.DenyList),
		ingest.WithLogger(log),
		ingest.WithForceFull(f.full),
		ingest.WithFullScanInterval(cfg.FullScanInterval()),
		ingest.WithDiscovery(cfg.DiscoverSinceTime(), cfg.DiscoverLimit),
	)

	rep, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d mappers, %d beatmaps (+%d), %d failed\n",
		rep.RunID, rep.TotalMappers, rep.TotalBeatmaps, rep.BeatmapsAdded, rep.Outcomes[ingest.OutcomeFailed])
	return nil
}
