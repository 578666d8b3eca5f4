package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/sgw-sniper/internal/config"
	"github.com/example/sgw-sniper/internal/db"
	"github.com/example/sgw-sniper/internal/migrate"
	"github.com/example/sgw-sniper/internal/queries"
	"github.com/example/sgw-sniper/internal/seen"
	"github.com/example/sgw-sniper/internal/shopgoodwill"
)

func newAlertsCmd() *cobra.Command {
	var (
		queryName   string
		runAll      bool
		listQueries bool
		dataSource  string
		markdown    bool
	)

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Run saved listing queries and alert on results not seen before",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			logger := buildLogger(cfg)
			ctx := cmd.Context()

			var savedQueries map[string]map[string]any
			var client *shopgoodwill.Client

			switch dataSource {
			case "saved_searches":
				client, _, err = authenticatedClients(ctx, cfg, nil)
				if err != nil {
					return err
				}
				searches, err := client.GetSavedSearches(ctx)
				if err != nil {
					return err
				}
				savedQueries = queries.QueriesFromSavedSearches(searches)
			case "local":
				// The query endpoints work unauthenticated; only expand the
				// local queries with the endpoint's required defaults.
				client = shopgoodwill.New()
				savedQueries = make(map[string]map[string]any, len(cfg.SavedQueries))
				for name, q := range cfg.SavedQueries {
					savedQueries[name] = queries.ApplyQueryDefaults(q)
				}
			default:
				return fmt.Errorf("invalid --data-source %q (want local or saved_searches)", dataSource)
			}

			if listQueries {
				names := make([]string, 0, len(savedQueries))
				for name := range savedQueries {
					names = append(names, name)
				}
				sort.Strings(names)
				fmt.Fprintf(os.Stdout, "Saved queries: %s\n", strings.Join(names, ", "))
				return nil
			}

			queriesToRun := savedQueries
			if !runAll {
				q, ok := savedQueries[queryName]
				if !ok {
					return fmt.Errorf("invalid query name %q", queryName)
				}
				queriesToRun = map[string]map[string]any{queryName: q}
			}

			store, cleanup, err := openSeenStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			alerter := &queries.Alerter{
				Client:   client,
				Store:    store,
				Log:      logger,
				Filters:  cfg.Filters,
				Markdown: markdown,
			}
			return alerter.Run(ctx, queriesToRun)
		},
	}

	cmd.Flags().StringVarP(&queryName, "query-name", "q", "", "name of the query to execute")
	cmd.Flags().BoolVar(&runAll, "all", false, "execute every query for the selected data source")
	cmd.Flags().BoolVarP(&listQueries, "list-queries", "l", false, "list runnable queries and exit")
	cmd.Flags().StringVarP(&dataSource, "data-source", "d", "local", "query source: local or saved_searches")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "format alert URLs as markdown (for gotify)")
	return cmd
}

// openSeenStore picks Postgres when a database URL is configured, otherwise
// the JSON file next to the config.
func openSeenStore(ctx context.Context, cfg config.Config) (seen.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		return &seen.FileStore{Path: cfg.SeenListingsFilename}, func() {}, nil
	}

	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := d.Ping(ctx); err != nil {
		d.Close()
		return nil, nil, fmt.Errorf("db ping: %w", err)
	}
	if err := migrate.Up(ctx, d); err != nil {
		d.Close()
		return nil, nil, err
	}
	return &seen.PostgresStore{DB: d}, d.Close, nil
}
