package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"jobfinder/internal/logger"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// defaultSchedule mirrors the times a job seeker actually checks the
// boards: workday mornings, before lunch, late afternoon and a sunday
// evening pass.
var defaultSchedule = []string{
	"0 9 * * 1-5",
	"30 11 * * 1-5",
	"30 16 * * 1-5",
	"0 20 * * 0",
}

const scheduleRunTimeout = 10 * time.Minute

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline on a cron schedule in the foreground",
	Long: `Run the pipeline on a cron schedule in the foreground. The default
schedule fires mon-fri at 09:00, 11:30 and 16:30, plus sunday at 20:00.
Use "` + app + ` run" for a single immediate pass.`,
	Run: func(cmd *cobra.Command, _ []string) {
		schedule(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().Bool("next", false, "print the upcoming fire times and exit")
	scheduleCmd.Flags().Bool("demo", true, "use the built-in sample postings instead of live scraping")
}

func schedule(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	sc := config.Schedule
	if sc == nil {
		sc = &ScheduleConfig{}
	}

	specs := sc.Times
	if len(specs) == 0 {
		specs = defaultSchedule
	}

	loc := time.Local
	if sc.Timezone != "" {
		loc, err = time.LoadLocation(sc.Timezone)
		if err != nil {
			logger.Fatal("parsing schedule timezone", zap.Error(err))
		}
	}

	if cmd.Flag("next").Value.String() == "true" {
		printNextRuns(specs, loc, time.Now())
		return
	}

	lockFile := sc.LockFile
	if lockFile == "" {
		lockFile = app + ".lock"
	}
	lock := flock.New(lockFile)
	locked, err := lock.TryLock()
	if err != nil {
		logger.Fatal("acquiring the scheduler lock", zap.Error(err))
	}
	if !locked {
		logger.Fatal("another scheduler is already running", zap.String("lock_file", lockFile))
	}
	defer func() { _ = lock.Unlock() }()

	p, cleanup := preparePipeline(ctx, cmd, config, logger)
	defer cleanup()

	job := func() {
		runCtx, cancel := context.WithTimeout(ctx, scheduleRunTimeout)
		defer cancel()

		summary, err := p.Run(runCtx)
		if err != nil {
			logger.Error("scheduled run failed", zap.Error(err))
			return
		}
		logger.Info("scheduled run completed",
			zap.Int("qualified", summary.AboveThreshold),
			zap.Int("logged_to_sheet", summary.LoggedToSheet),
			zap.Bool("email_sent", summary.EmailSent),
			zap.Int("errors", len(summary.Errors)),
		)
	}

	clog := cronLogger{log: logger.Sugar()}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(clog),
		cron.WithChain(cron.SkipIfStillRunning(clog)),
	)
	for _, spec := range specs {
		if _, err := c.AddFunc(spec, job); err != nil {
			logger.Fatal("registering the schedule", zap.String("spec", spec), zap.Error(err))
		}
		logger.Info("registered trigger", zap.String("spec", spec), zap.String("timezone", loc.String()))
	}

	printNextRuns(specs, loc, time.Now())

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.Start()
	logger.Info("scheduler running, press ctrl+c to stop", zap.Int("triggers", len(specs)))

	<-sigCtx.Done()
	logger.Info("shutdown signal received, stopping the scheduler")
	<-c.Stop().Done()
}

// printNextRuns shows the next fire time of every schedule entry, soonest
// first.
func printNextRuns(specs []string, loc *time.Location, from time.Time) {
	type upcoming struct {
		at   time.Time
		spec string
	}

	runs := make([]upcoming, 0, len(specs))
	for _, spec := range specs {
		sched, err := cron.ParseStandard(spec)
		if err != nil {
			fmt.Printf("  invalid schedule %q: %v\n", spec, err)
			continue
		}
		runs = append(runs, upcoming{at: sched.Next(from.In(loc)), spec: spec})
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].at.Before(runs[j].at) })

	fmt.Println("\nNext scheduled runs:")
	for _, r := range runs {
		fmt.Printf("  %s  (%s)\n", r.at.Format("2006-01-02 15:04 MST"), r.spec)
	}
	fmt.Println()
}

// cronLogger adapts zap to the cron logger interface.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Infow(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
