package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"headsup-hq/headsup/pkg/cli"
	"headsup-hq/headsup/pkg/config"
	"headsup-hq/headsup/pkg/journal"
	"headsup-hq/headsup/pkg/journal/retention"
	"headsup-hq/headsup/pkg/journal/storage"
)

var journalFlags struct {
	engine  string
	mode    string
	outcome string
	since   string
	limit   int
	format  string
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the search journal",
	Long: `Query and maintain the searches recorded while headsup runs.

Recording is enabled with journal.enabled in the configuration. Only the
sqlite backend outlives the adapter process.`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded searches",
	Long: `List recorded searches, newest first.

Examples:
  # Last 20 searches
  headsup journal list

  # Searches engine2 finished on its own during the last day
  headsup journal list --engine engine2 --outcome completed --since 24h

  # Export as CSV
  headsup journal list --limit 0 --format csv > searches.csv`,
	Args: cobra.NoArgs,
	RunE: listJournal,
}

var journalPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy now",
	Args:  cobra.NoArgs,
	RunE:  pruneJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalPruneCmd)

	journalListCmd.Flags().StringVar(&journalFlags.engine, "engine", "", "filter by engine (engine1, engine2)")
	journalListCmd.Flags().StringVar(&journalFlags.mode, "mode", "", "filter by search mode (movetime, clock, infinite, ponder)")
	journalListCmd.Flags().StringVar(&journalFlags.outcome, "outcome", "", "filter by outcome (completed, stopped, failed)")
	journalListCmd.Flags().StringVar(&journalFlags.since, "since", "", "only searches started within this duration (e.g. 2h)")
	journalListCmd.Flags().IntVar(&journalFlags.limit, "limit", 20, "maximum number of records, 0 for all")
	journalListCmd.Flags().StringVar(&journalFlags.format, "format", "text", "output format: text, json, csv")
}

// openStorage opens the journal storage named by backend.
func openStorage(cfg *config.Config, backend string, log *slog.Logger) (journal.Storage, error) {
	switch backend {
	case "sqlite":
		sqliteConfig := storage.DefaultSQLiteConfig()
		sqliteConfig.Path = cfg.Journal.SQLite.Path
		sqliteConfig.BusyTimeout = cfg.Journal.SQLite.BusyTimeout
		store, err := storage.NewSQLiteStorage(sqliteConfig, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storage: %w", err)
		}
		return store, nil
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported journal backend: %s", backend)
	}
}

// openPersistentStorage opens the configured storage for the journal
// subcommands, which only make sense on a backend that survives the adapter.
func openPersistentStorage() (journal.Storage, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, "failed to load configuration", err)
	}
	if cfg.Journal.Backend == "memory" {
		return nil, fmt.Errorf("the memory journal only lives inside the running adapter; configure journal.backend: sqlite")
	}
	return openStorage(cfg, cfg.Journal.Backend, slog.Default())
}

func listJournal(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(journalFlags.format)
	if err != nil {
		return err
	}

	query := &journal.Query{
		Engine:    journalFlags.engine,
		Mode:      journalFlags.mode,
		Outcome:   journalFlags.outcome,
		Limit:     journalFlags.limit,
		SortOrder: "desc",
	}
	if journalFlags.since != "" {
		d, err := time.ParseDuration(journalFlags.since)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		start := time.Now().Add(-d)
		query.StartTime = &start
	}

	store, err := openPersistentStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Query(cmd.Context(), query)
	if err != nil {
		return cli.NewCommandError("journal list", err)
	}

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), records)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), recordTable(records))
}

func pruneJournal(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, "failed to load configuration", err)
	}

	store, err := openPersistentStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	pruner := retention.NewPruner(store, &retention.Config{
		RetentionDays: cfg.Journal.Retention.Days,
		MaxRecords:    cfg.Journal.Retention.MaxRecords,
	}, slog.Default())

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		return cli.NewCommandError("journal prune", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pruned %d records\n", deleted)
	return nil
}

// recordTable renders journal records as rows.
type recordTable []*journal.Record

func (t recordTable) Headers() []string {
	return []string{"STARTED", "ENGINE", "NAME", "MOVE", "MATERIAL", "MODE", "BESTMOVE", "PONDER", "DURATION", "OUTCOME"}
}

func (t recordTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		outcome := r.Outcome
		if r.Error != "" {
			outcome += ": " + r.Error
		}
		rows = append(rows, []string{
			r.StartedAt.Local().Format(time.DateTime),
			r.Engine,
			r.EngineName,
			strconv.Itoa(r.FullMove),
			strconv.Itoa(r.Material),
			r.Mode,
			r.BestMove,
			r.Ponder,
			r.Duration.Round(time.Millisecond).String(),
			outcome,
		})
	}
	return rows
}
