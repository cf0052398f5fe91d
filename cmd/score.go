package cmd

import (
	"context"
	"fmt"
	"log"

	"jobfinder/internal/classify"
	"jobfinder/internal/logger"
	"jobfinder/internal/match"
	"jobfinder/internal/resume"
	"jobfinder/internal/source"
	"jobfinder/internal/vocab"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Classify every fetched posting and print the scores, without reporting anything",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().Bool("demo", true, "use the built-in sample postings instead of live scraping")
}

// score runs the scoring half of the pipeline and prints every posting with
// its match percentage, no threshold filter and no sinks.
func score(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	v, err := vocab.Load(config.VocabFile)
	if err != nil {
		logger.Fatal("loading vocabulary", zap.Error(err))
	}

	profile, err := resume.Load(config.Resume, v)
	if err != nil {
		logger.Fatal("loading resume", zap.Error(err))
	}

	postings, errs := source.FetchAll(ctx, logger, prepareSources(config, demoMode(cmd), logger)...)
	for _, ferr := range errs {
		logger.Warn("source failed", zap.Error(ferr))
	}
	if len(postings) == 0 {
		logger.Info("exiting", zap.String("reason", "no postings fetched"))
		return
	}

	weights := match.DefaultWeights()
	if config.Weights != nil {
		weights = *config.Weights
	}

	classifier, err := classify.New(v, weights, logger)
	if err != nil {
		logger.Fatal("building classifier", zap.Error(err))
	}

	results, failures, err := classifier.Batch(ctx, profile, postings, config.Workers)
	if err != nil {
		logger.Fatal("classifying postings", zap.Error(err))
	}
	for _, ferr := range failures {
		logger.Warn("posting skipped", zap.Error(ferr))
	}

	results.SortByScore()
	for _, r := range results {
		fmt.Printf("%5.1f%%  %-40s  @  %-25s  H1B=%-13s  MAANG=%-5t  F500=%t\n",
			r.Score, r.Posting.Title, r.Posting.Company,
			r.Sponsorship, r.NotableEmployer, r.LargeCompany,
		)
	}
}
