package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"jobfinder/internal/ai"
	"jobfinder/internal/ai/gemini"
	"jobfinder/internal/filtering"
	"jobfinder/internal/history"
	"jobfinder/internal/logger"
	"jobfinder/internal/pipeline"
	"jobfinder/internal/report"
	"jobfinder/internal/secrets"
	"jobfinder/internal/source"
	"jobfinder/internal/vocab"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes             = "Yes"
	PromptNo              = "No"
	PromptReportByCompany = "Report by company"
	PromptResultsToFile   = "Dump results to file"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Report these matches?",
	Items: []string{PromptYes, PromptNo, PromptReportByCompany, PromptResultsToFile},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the jobfinder pipeline once",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before reporting found matches")
	runCmd.Flags().Bool("include-seen", false, "keep postings already reported by earlier runs")
	runCmd.Flags().Bool("demo", true, "use the built-in sample postings instead of live scraping")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the jobfinder", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	p, cleanup := preparePipeline(ctx, cmd, config, logger)
	defer cleanup()

	collection, err := p.Collect(ctx)
	if err != nil {
		logger.Fatal("collecting postings", zap.Error(err))
	}

	if collection.Qualified.Len() == 0 {
		logger.Info("no matches above the threshold, writing the run summary")
		p.Report(ctx, collection)
		return
	}

	action := PromptYes
	for {
		var err error
		if cmd.Flag("auto-approve").Value.String() == "false" {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		logger.Info("current list of matches", zap.Int("count", collection.Qualified.Len()))

		if err := handleAction(ctx, action, p, collection, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, p *pipeline.Pipeline, c *pipeline.Collection, logger *zap.Logger) error {
	switch action {
	case PromptYes:
		summary := p.Report(ctx, c)
		logger.Info("reporting finished",
			zap.Int("qualified", summary.AboveThreshold),
			zap.Int("logged_to_sheet", summary.LoggedToSheet),
			zap.Bool("email_sent", summary.EmailSent),
			zap.Int("errors", len(summary.Errors)),
		)
		return errExit
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptReportByCompany:
		pretty, _ := json.MarshalIndent(c.Qualified.ReportByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("matches count", c.Qualified.Len()))
		return nil
	case PromptResultsToFile:
		filename, err := c.Qualified.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// preparePipeline wires every collaborator the pipeline needs. Optional
// sinks that cannot be built are disabled with a warning; the returned
// cleanup closes the history store.
func preparePipeline(ctx context.Context, cmd *cobra.Command, config *Config, logger *zap.Logger) (*pipeline.Pipeline, func()) {
	v, err := vocab.Load(config.VocabFile)
	if err != nil {
		logger.Fatal("loading vocabulary", zap.Error(err))
	}

	cleanup := func() {}
	var recorder pipeline.Recorder
	store, err := history.Open(config.HistoryFile)
	if err != nil {
		logger.Warn("history store unavailable, seen postings will not be filtered", zap.Error(err))
	} else {
		recorder = store
		cleanup = func() { _ = store.Close() }
	}

	deps := pipeline.Deps{
		Logger:   logger,
		Vocab:    v,
		Sources:  prepareSources(config, demoMode(cmd), logger),
		Filters:  prepareFilters(cmd),
		History:  recorder,
		Sheet:    prepareSheet(ctx, config.Sheets, logger),
		Backup:   report.NewCSVBackup(config.CSVFile),
		Notifier: prepareNotifier(config.Email, logger),
		ExecLog:  report.NewExecutionLog(config.LogFile),
	}

	adviser, err := prepareAdviser(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("skipping ai advice", zap.Error(err))
	} else {
		deps.Adviser = adviser
	}

	pcfg := pipeline.Config{
		ResumePath: config.Resume,
		MinScore:   config.MinScore,
		Workers:    config.Workers,
		TopJobs:    config.TopJobs,
	}
	if config.Weights != nil {
		pcfg.Weights = *config.Weights
	}
	if config.Exclude != nil {
		pcfg.Companies = config.Exclude.Companies
	}

	return pipeline.New(pcfg, deps), cleanup
}

func prepareFilters(cmd *cobra.Command) []filtering.Filter {
	return []filtering.Filter{
		filtering.NewMinScore(),
		filtering.NewCompanies(),
		filtering.NewSeen(cmd),
	}
}

// demoMode reports whether to serve the sample dataset. An explicit --demo
// flag wins over the config and the DEMO_MODE environment variable.
func demoMode(cmd *cobra.Command) bool {
	demo := viper.GetBool("demo")
	if cmd != nil {
		if flag := cmd.Flag("demo"); flag != nil && flag.Changed {
			demo = strings.EqualFold(flag.Value.String(), "true")
		}
	}
	return demo
}

func prepareSources(config *Config, demo bool, logger *zap.Logger) []source.Source {
	if config.PostingsFile != "" {
		return []source.Source{source.NewFile(config.PostingsFile)}
	}
	if demo {
		return []source.Source{source.NewDemo()}
	}

	sc := config.Search
	if sc == nil {
		sc = &SearchConfig{}
	}
	scraperCfg := source.ScraperConfig{
		Queries:     sc.Queries,
		Locations:   sc.Locations,
		MaxPerQuery: sc.MaxPerSource,
		UserAgent:   sc.UserAgent,
	}

	limiter := source.NewDefaultLimiter()
	if sc.RequestsPerSec > 0 {
		limiter = source.NewHostLimiter(sc.RequestsPerSec, 1)
	}

	return []source.Source{
		source.NewIndeed(scraperCfg, limiter, logger),
		source.NewLinkedIn(scraperCfg, limiter, logger),
	}
}

func prepareSheet(ctx context.Context, cfg *SheetsConfig, logger *zap.Logger) pipeline.Sheet {
	if cfg == nil || cfg.CredentialsFile == "" {
		logger.Info("google sheets sink disabled", zap.String("reason", "no credentials file configured"))
		return nil
	}

	sheet, err := report.NewSheets(ctx, report.SheetsConfig{
		SpreadsheetID:   cfg.SpreadsheetID,
		CredentialsPath: cfg.CredentialsFile,
		SheetName:       cfg.SheetName,
	}, logger)
	if err != nil {
		logger.Warn("skipping google sheets sink", zap.Error(err))
		return nil
	}
	return sheet
}

func prepareNotifier(cfg *EmailConfig, logger *zap.Logger) pipeline.Notifier {
	if cfg == nil {
		cfg = &EmailConfig{}
	}

	password, err := secrets.LoadOptional(secrets.Source{
		Name:  "smtp password",
		Value: cfg.Password,
		File:  cfg.PasswordFile,
	})
	if err != nil {
		logger.Warn("email notifications disabled", zap.Error(err))
		return nil
	}

	return report.NewMailer(report.MailerConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.User,
		Password: password,
		From:     cfg.From,
		To:       cfg.To,
	}, logger)
}

func prepareAdviser(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Adviser, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		cfg.Gemini = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	return gemini.NewAdviser(generator, logger), nil
}
