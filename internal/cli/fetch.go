package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/akarpov/wordgrab/internal/config"
	"github.com/akarpov/wordgrab/internal/provider"
	"github.com/akarpov/wordgrab/internal/request"
	"github.com/akarpov/wordgrab/internal/store"
)

var (
	fetchPlatform string
	fetchType     string
	fetchValue    string
	fetchMax      int
	fetchSort     string
	fetchFrom     string
	fetchTo       string
	fetchOpts     []string
	fetchFormat   string
	fetchTimeout  time.Duration
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a word list from one platform source",
	RunE:  fetchAction,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchPlatform, "platform", "", "platform name (e.g. reddit, twitter)")
	fetchCmd.Flags().StringVar(&fetchType, "type", "", "source type (e.g. subreddit, user, post, hashtag)")
	fetchCmd.Flags().StringVar(&fetchValue, "value", "", "source value (subreddit name, username, post id, ...)")
	fetchCmd.Flags().IntVar(&fetchMax, "max", -1, "max raw items to consume (default from config)")
	fetchCmd.Flags().StringVar(&fetchSort, "sort", "", "sort mode where the source type supports one")
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "earliest item time (RFC3339 or YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "latest item time (RFC3339 or YYYY-MM-DD)")
	fetchCmd.Flags().StringArrayVar(&fetchOpts, "opt", nil, "adapter option key=value (repeatable, e.g. expand_replies=true)")
	fetchCmd.Flags().StringVar(&fetchFormat, "format", "words", "output format: words, lines, json")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 0, "fetch deadline (default from config)")
	_ = fetchCmd.MarkFlagRequired("platform")
	_ = fetchCmd.MarkFlagRequired("type")
	_ = fetchCmd.MarkFlagRequired("value")
	rootCmd.AddCommand(fetchCmd)
}

func fetchAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	manager, initErrs := buildManager(cfg)
	for _, e := range initErrs {
		fmt.Fprintf(os.Stderr, "warning: %v\n", e)
	}

	req, err := buildRequest(cfg)
	if err != nil {
		return err
	}

	timeout := fetchTimeout
	if timeout == 0 {
		timeout = cfg.Fetch.Timeout.Duration
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	started := time.Now()
	words, fetchErr := manager.Dispatch(ctx, req)

	runStatus, runError := "ok", ""
	if fetchErr != nil {
		runStatus, runError = "error", fetchErr.Error()
	}
	if _, err := db.InsertRun(context.Background(), store.RunInput{
		Platform:   req.Platform,
		SourceType: req.SourceType,
		SourceVal:  req.SourceValue,
		Sort:       req.Sort,
		Words:      len(words),
		Duration:   time.Since(started),
		Status:     runStatus,
		Error:      runError,
		StartedAt:  started,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: record run: %v\n", err)
	}

	if fetchErr != nil {
		return fetchErr
	}

	return printWords(words)
}

func buildManager(cfg *config.Config) (*provider.Manager, []error) {
	creds := make(map[string]provider.Credentials, len(cfg.Platforms))
	for name, bundle := range cfg.Platforms {
		if bundle == nil {
			bundle = map[string]string{}
		}
		creds[name] = provider.Credentials(bundle)
	}
	return provider.NewManager(creds, cfg.Exclude)
}

func buildRequest(cfg *config.Config) (request.Request, error) {
	req := request.Request{
		Platform:    fetchPlatform,
		SourceType:  fetchType,
		SourceValue: fetchValue,
		MaxItems:    fetchMax,
		Sort:        fetchSort,
	}
	if req.MaxItems < 0 {
		req.MaxItems = cfg.Fetch.MaxItems
	}

	window, err := parseWindow(fetchFrom, fetchTo)
	if err != nil {
		return request.Request{}, err
	}
	req.Window = window

	if len(fetchOpts) > 0 {
		req.Options = make(map[string]any, len(fetchOpts))
		for _, opt := range fetchOpts {
			key, value, found := strings.Cut(opt, "=")
			if !found || key == "" {
				return request.Request{}, fmt.Errorf("parse --opt %q: want key=value", opt)
			}
			switch value {
			case "true":
				req.Options[key] = true
			case "false":
				req.Options[key] = false
			default:
				req.Options[key] = value
			}
		}
	}

	return req, nil
}

func parseWindow(from, to string) (*request.Window, error) {
	if from == "" && to == "" {
		return nil, nil
	}

	var w request.Window
	var err error
	if from != "" {
		w.Start, err = parseTimeFlag(from)
		if err != nil {
			return nil, fmt.Errorf("parse --from: %w", err)
		}
	}
	if to != "" {
		w.End, err = parseTimeFlag(to)
		if err != nil {
			return nil, fmt.Errorf("parse --to: %w", err)
		}
	}
	return &w, nil
}

func parseTimeFlag(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func printWords(words []string) error {
	switch fetchFormat {
	case "words", "":
		fmt.Println(strings.Join(words, " "))
		return nil
	case "lines":
		for _, w := range words {
			fmt.Println(w)
		}
		return nil
	case "json":
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(words)
	default:
		return fmt.Errorf("unknown format %q (want words, lines, or json)", fetchFormat)
	}
}
