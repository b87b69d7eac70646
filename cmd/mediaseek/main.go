package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JohnDeved/mediaseek/internal/catalog"
	"github.com/JohnDeved/mediaseek/internal/config"
	"github.com/JohnDeved/mediaseek/internal/history"
	"github.com/JohnDeved/mediaseek/internal/logging"
	"github.com/JohnDeved/mediaseek/internal/tui"
	"github.com/JohnDeved/mediaseek/internal/util"
)

const (
	exitOK     = 0
	exitError  = 1
	exitConfig = 2
)

// configError marks failures that stem from configuration rather than runtime.
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mediaseek",
		Short: "Search a media catalog from your terminal",
		Long: `mediaseek - search a media catalog, inspect a title's download sources
and list the files of a source, interactively or from scripts.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runTUI,
	}

	searchCmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}
	searchCmd.Flags().Int("limit", 0, "Maximum number of results (0 = unlimited)")
	searchCmd.Flags().Bool("json", false, "Output JSON")

	detailsCmd := &cobra.Command{
		Use:   "details <path>",
		Short: "Show a title's details and download sources",
		Args:  cobra.ExactArgs(1),
		RunE:  runDetails,
	}
	detailsCmd.Flags().Bool("json", false, "Output JSON")

	filesCmd := &cobra.Command{
		Use:   "files <download-key>",
		Short: "List the files of a download source",
		Args:  cobra.ExactArgs(1),
		RunE:  runFiles,
	}
	filesCmd.Flags().Bool("json", false, "Output JSON")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show past searches and file listings",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	historyCmd.Flags().Int("limit", 20, "Maximum number of entries per section")
	historyCmd.Flags().Bool("json", false, "Output JSON")

	historyClearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the search history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryClear,
	}
	historyCmd.AddCommand(historyClearCmd)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfig,
	}
	configCmd.Flags().Bool("json", false, "Output JSON")

	setURLCmd := &cobra.Command{
		Use:   "set-url <url>",
		Short: "Store the catalog address in the config file",
		Args:  cobra.ExactArgs(1),
		RunE:  runSetURL,
	}
	configCmd.AddCommand(setURLCmd)

	rootCmd.AddCommand(searchCmd, detailsCmd, filesCmd, historyCmd, configCmd)
	return rootCmd
}

func exitCode(err error) int {
	var cfgErr *configError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &cfgErr),
		errors.Is(err, config.ErrMissingBaseURL),
		errors.Is(err, config.ErrInvalidBaseURL):
		return exitConfig
	default:
		return exitError
	}
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, &configError{fmt.Errorf("loading config: %w", err)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &configError{err}
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *catalog.Client {
	return catalog.New(cfg.BaseURL, cfg.RequestsPerSecond, cfg.RequestTimeout)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !isInteractiveTerminal() {
		return errors.New("the interactive browser needs a terminal; use the search, details or files commands instead")
	}

	logger, closer, err := logging.Open(config.LogPath(), cfg.Debug)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer closer.Close()

	opts := tui.Options{
		QueryWidth: cfg.QueryWidth,
		Logger:     logger,
		SessionID:  history.NewSessionID(),
	}

	if cfg.HistoryEnabled {
		// A broken journal should not keep the browser from starting.
		db, err := history.Open(config.DBPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not open history DB: %v\n", err)
			logger.Warn("history disabled", "err", err)
		} else {
			defer db.Close()
			opts.Journal = db
		}
	}

	logger.Info("session started", "session", opts.SessionID, "base_url", cfg.BaseURL)
	return tui.Run(cmd.Context(), newClient(cfg), opts)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	results, err := newClient(cfg).Search(cmd.Context(), query)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}

	jsonMode, _ := cmd.Flags().GetBool("json")
	if jsonMode {
		if results == nil {
			results = []catalog.SearchResult{}
		}
		return printJSON(results)
	}

	if len(results) == 0 {
		fmt.Printf("No results for %q.\n", query)
		return nil
	}

	fmt.Printf("Found %d results for %q:\n\n", len(results), query)
	for i, r := range results {
		fmt.Printf("%3d. %s\n", i+1, r.Title)
		fmt.Printf("     %s\n", r.Path)
	}
	return nil
}

func runDetails(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	details, err := newClient(cfg).Details(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	jsonMode, _ := cmd.Flags().GetBool("json")
	if jsonMode {
		return printJSON(details)
	}

	info := details.Info
	fmt.Printf("Runtime:   %s\n", util.OrDash(info.Runtime))
	fmt.Printf("Downloads: %s\n", util.OrDash(info.DownloadCount))
	fmt.Printf("Genres:    %s\n", util.OrDash(util.Join(info.Genres, ", ")))
	fmt.Printf("Cast:      %s\n", util.OrDash(util.Join(info.Cast, ", ")))
	if info.Synopsis != "" {
		fmt.Printf("\n%s\n", info.Synopsis)
	}

	fmt.Printf("\nDownload sources (%d):\n", len(details.DownloadItems))
	for i, d := range details.DownloadItems {
		fmt.Printf("%3d. %s\t(seeders %s)\n", i+1, d.FileName, util.OrDash(d.SeederCount))
		fmt.Printf("     key: %s\n", d.DownloadKey)
	}
	return nil
}

func runFiles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	resp, err := newClient(cfg).Download(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	jsonMode, _ := cmd.Flags().GetBool("json")
	if jsonMode {
		if resp.Files == nil {
			resp.Files = []catalog.FileItem{}
		}
		return printJSON(resp)
	}

	if len(resp.Files) == 0 {
		fmt.Println("No files.")
		return nil
	}
	for _, f := range resp.Files {
		fmt.Printf("%-6s\t%s\t%s\n", util.OrDash(f.ConnectionCount), f.Name, f.FilePath)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := history.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer db.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	searches, err := db.RecentSearches(limit)
	if err != nil {
		return err
	}
	listings, err := db.RecentListings(limit)
	if err != nil {
		return err
	}
	stats, err := db.GetStats()
	if err != nil {
		return err
	}

	jsonMode, _ := cmd.Flags().GetBool("json")
	if jsonMode {
		out := struct {
			Searches []history.SearchEntry `json:"searches"`
			Listings []history.Listing     `json:"listings"`
			Sessions int                   `json:"sessions"`
			Database string                `json:"database"`
		}{
			Searches: append([]history.SearchEntry{}, searches...),
			Listings: append([]history.Listing{}, listings...),
			Sessions: stats.Sessions,
			Database: config.DBPath(),
		}
		return printJSON(out)
	}

	fmt.Printf("History: %d searches, %d listings, %d sessions\n", stats.Searches, stats.Listings, stats.Sessions)
	fmt.Printf("Database: %s\n", config.DBPath())

	if len(searches) > 0 {
		fmt.Printf("\nRecent searches:\n")
		for _, e := range searches {
			fmt.Printf("  %s\t%4d results\t%s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.ResultCount, e.Query)
		}
	}
	if len(listings) > 0 {
		fmt.Printf("\nRecent file listings:\n")
		for _, l := range listings {
			fmt.Printf("  %s\t%4d files\t%s / %s\n", l.CreatedAt.Local().Format("2006-01-02 15:04"), l.FileCount,
				util.Truncate(l.Title, 40), util.Truncate(l.FileName, 40))
		}
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	db, err := history.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer db.Close()

	removed, err := db.Clear()
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d history entries\n", removed)
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return &configError{fmt.Errorf("loading config: %w", err)}
	}

	status := "ok"
	if err := cfg.Validate(); err != nil {
		status = err.Error()
	}

	jsonMode, _ := cmd.Flags().GetBool("json")
	if jsonMode {
		out := struct {
			*config.Config
			RequestTimeout string `json:"request_timeout"`
			ConfigFile     string `json:"config_file"`
			HistoryDB      string `json:"history_db"`
			LogFile        string `json:"log_file"`
			Status         string `json:"status"`
		}{
			Config:         cfg,
			RequestTimeout: cfg.RequestTimeout.String(),
			ConfigFile:     config.ConfigPath(),
			HistoryDB:      config.DBPath(),
			LogFile:        config.LogPath(),
			Status:         status,
		}
		return printJSON(out)
	}

	fmt.Printf("base_url:            %s\n", util.OrDash(cfg.BaseURL))
	fmt.Printf("requests_per_second: %g\n", cfg.RequestsPerSecond)
	fmt.Printf("request_timeout:     %s\n", cfg.RequestTimeout)
	fmt.Printf("query_width:         %d\n", cfg.QueryWidth)
	fmt.Printf("history_enabled:     %t\n", cfg.HistoryEnabled)
	fmt.Printf("debug:               %t\n", cfg.Debug)
	fmt.Printf("\nConfig file: %s\n", config.ConfigPath())
	fmt.Printf("History DB:  %s\n", config.DBPath())
	fmt.Printf("Log file:    %s\n", config.LogPath())
	fmt.Printf("Status:      %s\n", status)
	return nil
}

func runSetURL(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return &configError{fmt.Errorf("loading config: %w", err)}
	}
	cfg.BaseURL = strings.TrimSpace(args[0])
	if err := cfg.Validate(); err != nil {
		return &configError{err}
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Saved base_url to %s\n", config.ConfigPath())
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isInteractiveTerminal() bool {
	inInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	outInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (inInfo.Mode()&os.ModeCharDevice) != 0 && (outInfo.Mode()&os.ModeCharDevice) != 0
}
