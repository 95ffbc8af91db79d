package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pders01/pixwall/internal/catalog"
	"github.com/pders01/pixwall/internal/feed"
	"github.com/pders01/pixwall/internal/media"
	"github.com/pders01/pixwall/internal/provider"
)

var (
	searchPage     int
	searchCategory string
	searchFilters  []string
	warmPages      int
	historyLimit   int
)

func addCLICommands(root *cobra.Command) {
	searchCmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search images and print one page of results",
		RunE:  runSearch,
	}
	searchCmd.Flags().IntVarP(&searchPage, "page", "p", 1, "Page to fetch")
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "Restrict to a category")
	searchCmd.Flags().StringArrayVarP(&searchFilters, "filter", "f", nil, "Filter as key=value (order, orientation, type, colors); repeatable")

	downloadCmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download an image by id",
		Args:  cobra.ExactArgs(1),
		RunE:  runDownload,
	}

	warmCmd := &cobra.Command{
		Use:   "warm",
		Short: "Prefetch every category into the response cache",
		RunE:  runWarm,
	}
	warmCmd.Flags().IntVar(&warmPages, "pages", 1, "Pages per category")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List downloaded images",
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to show")

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or purge the response cache",
	}
	cacheCmd.AddCommand(
		&cobra.Command{Use: "stats", Short: "Show cache size", RunE: runCacheStats},
		&cobra.Command{Use: "purge", Short: "Remove expired entries", RunE: runCachePurge},
	)

	root.AddCommand(searchCmd, downloadCmd, warmCmd, historyCmd, cacheCmd)
}

// parseFilters turns key=value pairs into a filter set, checking both against
// the catalog.
func parseFilters(c *catalog.Catalog, pairs []string) (feed.FilterSet, error) {
	filters := feed.FilterSet{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("invalid filter %q, want key=value", pair)
		}
		if !c.Valid(key, value) {
			return nil, fmt.Errorf("unknown filter %s=%s", key, value)
		}
		filters[key] = value
	}
	return filters, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	c := catalog.Default()
	if searchCategory != "" && !c.HasCategory(searchCategory) {
		return fmt.Errorf("unknown category %q", searchCategory)
	}
	filters, err := parseFilters(c, searchFilters)
	if err != nil {
		return err
	}
	if searchPage < 1 {
		searchPage = 1
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()

	q := feed.Build(searchPage, strings.Join(args, " "), searchCategory, filters, feed.RuleExplicit)
	res := s.loader().Load(ctx, feed.Request{Query: q})
	if res.Err != nil {
		return res.Err
	}
	hits, ok := res.Response.Records()
	if !ok {
		return fmt.Errorf("unexpected response from %s", s.provider.Name())
	}

	out := cmd.OutOrStdout()
	if len(hits) == 0 {
		fmt.Fprintln(out, "No images found")
		return nil
	}
	printRecords(out, hits)
	fmt.Fprintf(out, "\n%s page %d, %d of %d hits\n", q, searchPage, len(hits), res.Response.Data.TotalHits)
	return nil
}

func printRecords(w io.Writer, records []provider.ImageRecord) {
	bold := color.New(color.Bold).SprintFunc()
	muted := color.New(color.FgHiBlack).SprintFunc()

	tbl := uitable.New()
	tbl.MaxColWidth = 50
	tbl.Wrap = false
	tbl.AddRow(bold("ID"), bold("SIZE"), bold("LIKES"), bold("USER"), bold("TAGS"))
	for _, r := range records {
		tbl.AddRow(
			r.ID,
			fmt.Sprintf("%dx%d", r.ImageWidth, r.ImageHeight),
			r.Likes,
			muted(r.User),
			r.Tags,
		)
	}
	fmt.Fprintln(w, tbl)
}

func runDownload(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid image id %q", args[0])
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()

	rec, err := s.provider.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("looking up image %d: %w", id, err)
	}

	downloader, err := media.NewDownloader(s.cfg, s.store)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("image %d", id)),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	progress := func(written, total int64) {
		if total > 0 && bar.GetMax64() != total {
			bar.ChangeMax64(total)
		}
		_ = bar.Set64(written)
	}

	path, err := downloader.Download(ctx, *rec, progress)
	_ = bar.Finish()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", media.MsgDownloaded, path)
	return nil
}

func runWarm(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()

	if warmPages < 1 {
		warmPages = 1
	}
	var queries []feed.Query
	for _, category := range catalog.Default().Categories {
		for page := 1; page <= warmPages; page++ {
			queries = append(queries, feed.Build(page, "", category, nil, feed.RuleExplicit))
		}
	}

	start := time.Now()
	ok, err := s.loader().Warm(ctx, queries)
	fmt.Fprintf(cmd.OutOrStdout(), "Warmed %d of %d queries in %s\n", ok, len(queries), time.Since(start).Round(time.Millisecond))
	return err
}

func runHistory(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	downloads, err := s.store.GetDownloads(historyLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(downloads) == 0 {
		fmt.Fprintln(out, "No downloads yet")
		return nil
	}

	bold := color.New(color.Bold).SprintFunc()
	tbl := uitable.New()
	tbl.MaxColWidth = 60
	tbl.AddRow(bold("WHEN"), bold("IMAGE"), bold("SIZE"), bold("PATH"))
	for _, d := range downloads {
		tbl.AddRow(d.DownloadedAt.Local().Format("2006-01-02 15:04"), d.ImageID, humanBytes(d.Size), d.Path)
	}
	fmt.Fprintln(out, tbl)
	return nil
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	entries, compressed, raw, err := s.store.CacheStats()
	if err != nil {
		return err
	}
	last, err := s.store.LastPurge()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d cached responses, %s on disk (%s uncompressed)\n",
		entries, humanBytes(compressed), humanBytes(raw))
	if last.IsZero() {
		fmt.Fprintln(out, "Last purge: never")
	} else {
		fmt.Fprintf(out, "Last purge: %s\n", last.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.store.PurgeExpired()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries\n", n)
	return nil
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
