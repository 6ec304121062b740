package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jonathan/job-tracker/internal/browser"
	"github.com/jonathan/job-tracker/internal/client"
	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/extract"
	"github.com/jonathan/job-tracker/internal/fetch"
	"github.com/jonathan/job-tracker/internal/linkedin"
	"github.com/jonathan/job-tracker/internal/schemas"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// Browser modes for job scraping.
const (
	browserAuto   = "auto"   // render only when the static page looks empty
	browserAlways = "always" // skip the static fetch
	browserNever  = "never"
)

func newScrapeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Extract job postings or LinkedIn profiles from live pages",
	}
	cmd.AddCommand(newScrapeJobCmd(v), newScrapeProfileCmd(v))
	return cmd
}

// jobResult is one line of `scrape job` output.
type jobResult struct {
	URL      string             `json:"url"`
	Found    bool               `json:"found"`
	Source   string             `json:"source,omitempty"`
	Rendered bool               `json:"rendered,omitempty"`
	Job      *extract.JobRecord `json:"job,omitempty"`
	SavedID  string             `json:"saved_id,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type jobScrapeOptions struct {
	browserMode string
	fetch       *fetch.Options
	browser     browser.Options
}

func newScrapeJobCmd(v *viper.Viper) *cobra.Command {
	var (
		urls        []string
		mode        string
		validate    bool
		save        bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "job",
		Short: "Run the job extraction cascade over one or more posting URLs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(urls) == 0 {
				return fmt.Errorf("at least one --url is required")
			}
			switch mode {
			case browserAuto, browserAlways, browserNever:
			default:
				return fmt.Errorf("--browser must be one of auto, always, never; got %q", mode)
			}

			scrapeCfg, err := config.NewScrapeConfig()
			if err != nil {
				return err
			}
			if concurrency <= 0 {
				concurrency = scrapeCfg.Concurrency
			}

			opts := jobScrapeOptions{
				browserMode: mode,
				fetch:       fetch.DefaultOptions(),
				browser:     browser.DefaultOptions(),
			}
			opts.browser.Timeout = scrapeCfg.PageTimeout
			opts.browser.Verbose = v.GetBool("verbose")

			results, err := scrapeJobs(cmd.Context(), urls, concurrency, opts)
			if err != nil {
				return err
			}

			if validate {
				if err := validateJobs(results); err != nil {
					return err
				}
			}
			if save {
				api := client.New(v.GetString("server"), client.WithToken(v.GetString("token")), client.WithVerbose(v.GetBool("verbose")))
				saveJobs(cmd, v, api, results)
			}

			if printer := verbosePrinter(cmd, v); printer != nil {
				for _, res := range results {
					printer.PrintJob(res.URL, res.Source, res.Job)
				}
			}

			if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			return summarizeJobs(cmd, v, results)
		},
	}

	cmd.Flags().StringArrayVarP(&urls, "url", "u", nil, "job posting URL (repeatable)")
	cmd.Flags().StringVar(&mode, "browser", browserAuto, "headless rendering: auto, always or never")
	cmd.Flags().BoolVar(&validate, "validate", false, "validate each record against the job record schema")
	cmd.Flags().BoolVar(&save, "save", false, "save found jobs through the API (needs --token)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "pages fetched in parallel (default SCRAPE_CONCURRENCY)")
	return cmd
}

// scrapeJobs extracts every URL with at most concurrency pages in flight.
// Per-URL failures are recorded in the results; only cancellation aborts.
func scrapeJobs(ctx context.Context, urls []string, concurrency int, opts jobScrapeOptions) ([]*jobResult, error) {
	results := make([]*jobResult, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, u := range urls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = scrapeJob(ctx, u, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func scrapeJob(ctx context.Context, rawURL string, opts jobScrapeOptions) *jobResult {
	res := &jobResult{URL: rawURL}

	if opts.browserMode != browserAlways {
		fetched, err := fetch.URL(ctx, rawURL, opts.fetch)
		if err != nil {
			res.Error = err.Error()
			var fetchErr *fetch.Error
			if opts.browserMode == browserNever || !errors.As(err, &fetchErr) || fetched == nil || fetched.StatusCode != http.StatusForbidden {
				return res
			}
			// Some boards refuse plain clients but serve browsers.
		} else {
			page, err := extract.NewPageFromHTML(fetched.URL, fetched.HTML)
			if err != nil {
				res.Error = err.Error()
				return res
			}
			if job, source := extract.ExtractJobWithSource(page); job != nil {
				res.Found, res.Source, res.Job = true, source, job
				return res
			}
			if opts.browserMode == browserNever || !fetch.NeedsBrowser(fetched.HTML) {
				return res
			}
		}
	}

	html, location, err := browser.Render(ctx, rawURL, opts.browser)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Error = ""
	res.Rendered = true

	page, err := extract.NewPageFromHTML(location, html)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if job, source := extract.ExtractJobWithSource(page); job != nil {
		res.Found, res.Source, res.Job = true, source, job
	}
	return res
}

func validateJobs(results []*jobResult) error {
	validator, err := schemas.Load(schemas.JobRecordSchema)
	if err != nil {
		return err
	}
	for _, res := range results {
		if res.Job == nil {
			continue
		}
		if err := validator.Validate(res.Job); err != nil {
			res.Error = err.Error()
		}
	}
	return nil
}

// saveJobs posts every valid found job. Failures are recorded per result.
func saveJobs(cmd *cobra.Command, v *viper.Viper, api *client.Client, results []*jobResult) {
	for _, res := range results {
		if res.Job == nil || res.Error != "" {
			continue
		}
		job, err := api.CreateJob(cmd.Context(), res.Job)
		if err != nil {
			res.Error = fmt.Sprintf("failed to save job: %v", err)
			continue
		}
		if job != nil {
			res.SavedID = job.ID.String()
			logInfo(cmd, v, "Saved %s at %s", job.JobTitle, job.Company)
		}
	}
}

func summarizeJobs(cmd *cobra.Command, v *viper.Viper, results []*jobResult) error {
	found, failed := 0, 0
	for _, res := range results {
		if res.Found {
			found++
		}
		if res.Error != "" {
			failed++
		}
	}
	logInfo(cmd, v, "%d of %d pages had job data", found, len(results))
	if failed > 0 {
		return fmt.Errorf("%d of %d URLs failed", failed, len(results))
	}
	return nil
}

// profileOutput is the output of `scrape profile`.
type profileOutput struct {
	*extract.ScrapeResult
	Sync *syncSummary `json:"sync,omitempty"`
}

type syncSummary struct {
	ContactName      string   `json:"contact_name,omitempty"`
	Added            []string `json:"added"`
	AlreadyExisted   []string `json:"already_existed"`
	TotalConnections int      `json:"total_connections"`
	Error            string   `json:"error,omitempty"`
}

func newScrapeProfileCmd(v *viper.Viper) *cobra.Command {
	var (
		profileURL     string
		allConnections bool
		userDataDir    string
		headful        bool
		sync           bool
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Read a LinkedIn profile and its mutual connections in headless Chrome",
		Long: `Read a LinkedIn profile in Chrome. Mutual connections are only visible to a
logged-in viewer, so pass --user-data-dir pointing at a Chrome profile that is
signed in to LinkedIn.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !linkedin.IsProfileURL(profileURL) {
				return fmt.Errorf("--url must be a LinkedIn profile URL, got %q", profileURL)
			}

			scrapeCfg, err := config.NewScrapeConfig()
			if err != nil {
				return err
			}

			opts := browser.DefaultOptions()
			opts.Headless = !headful
			opts.UserDataDir = userDataDir
			opts.Timeout = scrapeCfg.PageTimeout
			opts.Verbose = v.GetBool("verbose")

			session, err := browser.NewSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.Navigate(cmd.Context(), profileURL); err != nil {
				return err
			}

			scraper := extract.NewScraper(session, nil, scrapeCfg.Options(v.GetBool("verbose")))
			result, err := scraper.ExtractProfileData(cmd.Context(), allConnections)
			if err != nil {
				return err
			}
			if printer := verbosePrinter(cmd, v); printer != nil {
				printer.PrintProfile(result)
			}

			out := profileOutput{ScrapeResult: result}
			if sync {
				api := client.New(v.GetString("server"), client.WithAPIKey(v.GetString("api-key")), client.WithVerbose(v.GetBool("verbose")))
				out.Sync = syncProfile(cmd.Context(), api, result.Profile)
			}

			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if out.Sync != nil && out.Sync.Error != "" {
				return errors.New(out.Sync.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileURL, "url", "u", "", "LinkedIn profile URL")
	cmd.Flags().BoolVar(&allConnections, "all-connections", false, "open and scroll the mutual connections list")
	cmd.Flags().StringVar(&userDataDir, "user-data-dir", "", "Chrome profile directory with a LinkedIn session")
	cmd.Flags().BoolVar(&headful, "show-browser", false, "run Chrome with a visible window")
	cmd.Flags().BoolVar(&sync, "sync", false, "merge the connections into the stored contact through the API")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func syncProfile(ctx context.Context, api *client.Client, profile *extract.ProfileRecord) *syncSummary {
	resp, err := api.SyncConnections(ctx, profile.LinkedInURL, profile.MutualConnections)
	if err != nil {
		var httpErr *client.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return &syncSummary{Error: fmt.Sprintf("no contact saved for %s; add the contact first", profile.LinkedInURL)}
		}
		return &syncSummary{Error: fmt.Sprintf("sync failed: %v", err)}
	}
	return &syncSummary{
		ContactName:      resp.ContactName,
		Added:            resp.Added,
		AlreadyExisted:   resp.AlreadyExisted,
		TotalConnections: resp.TotalConnections,
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
