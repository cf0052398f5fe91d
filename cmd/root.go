package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"jobfinder/internal/filtering"
	"jobfinder/internal/match"
)

const (
	app = "jobfinder"
)

// Config is the full configuration surface. Every key has a usable default
// so the demo pipeline runs without a config file at all.
type Config struct {
	Resume       string          `mapstructure:"resume"`
	VocabFile    string          `mapstructure:"vocab-file"`
	MinScore     float64         `mapstructure:"min-score"`
	Weights      *match.Weights  `mapstructure:"weights"`
	Workers      int             `mapstructure:"workers"`
	TopJobs      int             `mapstructure:"top-jobs"`
	HistoryFile  string          `mapstructure:"history-file"`
	CSVFile      string          `mapstructure:"csv-file"`
	LogFile      string          `mapstructure:"log-file"`
	PostingsFile string          `mapstructure:"postings-file"`
	Exclude      *ExcludeConfig  `mapstructure:"exclude"`
	Search       *SearchConfig   `mapstructure:"search"`
	Sheets       *SheetsConfig   `mapstructure:"sheets"`
	Email        *EmailConfig    `mapstructure:"email"`
	Schedule     *ScheduleConfig `mapstructure:"schedule"`
	AI           *AIConfig       `mapstructure:"ai"`
}

type ExcludeConfig struct {
	Companies []string `mapstructure:"companies"`
}

type SearchConfig struct {
	Queries        []string `mapstructure:"queries"`
	Locations      []string `mapstructure:"locations"`
	MaxPerSource   int      `mapstructure:"max-per-source"`
	UserAgent      string   `mapstructure:"user-agent"`
	RequestsPerSec float64  `mapstructure:"requests-per-sec"`
}

type SheetsConfig struct {
	SpreadsheetID   string `mapstructure:"spreadsheet-id"`
	CredentialsFile string `mapstructure:"credentials-file"`
	SheetName       string `mapstructure:"sheet-name"`
}

type EmailConfig struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	User         string   `mapstructure:"user"`
	Password     string   `mapstructure:"password"`
	PasswordFile string   `mapstructure:"password-file"`
	From         string   `mapstructure:"from"`
	To           []string `mapstructure:"to"`
}

type ScheduleConfig struct {
	Times    []string `mapstructure:"times"`
	Timezone string   `mapstructure:"timezone"`
	LockFile string   `mapstructure:"lock-file"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobfinder scores job postings against your resume and reports the matches",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"demo":                    "DEMO_MODE",
		"email.host":              "SMTP_HOST",
		"email.port":              "SMTP_PORT",
		"email.user":              "SMTP_USER",
		"email.password":          "SMTP_PASSWORD",
		"email.password-file":     "SMTP_PASSWORD_FILE",
		"email.to":                "NOTIFY_TO",
		"sheets.spreadsheet-id":   "SPREADSHEET_ID",
		"sheets.credentials-file": "GOOGLE_CREDENTIALS_PATH",
		"ai.gemini.api-key-file":  "GEMINI_API_KEY_FILE",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobfinder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Only the pipeline commands need configuration.
	if runCmd.CalledAs() == "" && scoreCmd.CalledAs() == "" && scheduleCmd.CalledAs() == "" {
		return
	}

	viper.SetDefault("demo", true)
	viper.SetDefault("resume", "resume.pdf")
	viper.SetDefault("min-score", filtering.DefaultMinScore)
	viper.SetDefault("history-file", "jobs.db")
	viper.SetDefault("csv-file", "jobs_log.csv")
	viper.SetDefault("log-file", "execution_log.txt")
	viper.SetDefault("email.host", "smtp.gmail.com")
	viper.SetDefault("email.port", 587)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// A missing default config is fine, the built-in defaults cover the
	// demo pipeline. An explicitly requested or unparseable config is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	return config, nil
}
