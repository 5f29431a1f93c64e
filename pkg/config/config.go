// Package config provides configuration loading and validation for shiftreport.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/midanish/PTEO-Shift-Report/pkg/attendance"
	"github.com/midanish/PTEO-Shift-Report/pkg/classify"
	"github.com/midanish/PTEO-Shift-Report/pkg/credentials"
	"github.com/midanish/PTEO-Shift-Report/pkg/persist"
	"github.com/midanish/PTEO-Shift-Report/pkg/sheets"
)

// Sentinel validation errors.
var (
	ErrInvalidTeamSize    = errors.New("attendance team size must be positive")
	ErrNoShifts           = errors.New("attendance shifts must not be empty")
	ErrNoCriticalLabels   = errors.New("classification critical labels must not be empty")
	ErrInvalidLogFormat   = errors.New("invalid logging format")
	ErrInvalidSampleRatio = errors.New("observability sample ratio must be within [0, 1]")
)

// Default sheet URLs of the PTEO team.
const (
	DefaultLotsURL       = "https://docs.google.com/spreadsheets/d/1XlkxQlIjm29dGzUhm9iRHaL6VuOwRSeJc4mCqR6gxhA/edit"
	DefaultMembersURL    = "https://docs.google.com/spreadsheets/d/1mTmcjz93wwF_YJUVoKmGPYsFR73KHiyR8l4uUnSyPYk/edit"
	DefaultAttendanceURL = "https://docs.google.com/spreadsheets/d/1G8_xpSug-dOEODdwLI6wgGphbSNc3Y924IyXoIsyZqs/edit"
	DefaultDetapeURL     = "https://docs.google.com/spreadsheets/d/1J3z7ISG1Vbv4uZk0mH97szJXJY6T4sO7J9lhKXQ6pEU/edit"
)

// Default configuration values.
const (
	defaultCredentialsFile = "pteo-report-service-account.json"
	defaultSessionDir      = ".shiftreport"
	defaultSessionCodec    = "lz4"
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
	maxSampleRatio         = 1.0
)

// Config holds all configuration for shiftreport.
type Config struct {
	Sheets         SheetsConfig         `mapstructure:"sheets"`
	Session        SessionConfig        `mapstructure:"session"`
	Classification ClassificationConfig `mapstructure:"classification"`
	Attendance     AttendanceConfig     `mapstructure:"attendance"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Observability  ObservabilityConfig  `mapstructure:"observability"`
}

// SheetConfig locates one worksheet.
type SheetConfig struct {
	URL       string   `mapstructure:"url"`
	Worksheet string   `mapstructure:"worksheet"`
	Fallbacks []string `mapstructure:"fallbacks"`
}

// Selector returns the worksheet selection rule.
func (s SheetConfig) Selector() sheets.Worksheet {
	return sheets.Worksheet{Preferred: s.Worksheet, Fallbacks: s.Fallbacks}
}

// SheetsConfig holds the spreadsheet locations and credentials.
type SheetsConfig struct {
	Lots       SheetConfig `mapstructure:"lots"`
	Members    SheetConfig `mapstructure:"members"`
	Attendance SheetConfig `mapstructure:"attendance"`
	Detape     SheetConfig `mapstructure:"detape"`

	CredentialsFile string `mapstructure:"credentials_file"`
	SecretsFile     string `mapstructure:"secrets_file"`
}

// SessionConfig holds where captured snapshots are kept between commands.
type SessionConfig struct {
	Dir   string `mapstructure:"dir"`
	Codec string `mapstructure:"codec"`
}

// ClassificationConfig holds the sheet label rules.
type ClassificationConfig struct {
	CriticalLabels []string `mapstructure:"critical_labels"`
	SplitMarkers   []string `mapstructure:"split_markers"`
	SummaryMarkers []string `mapstructure:"summary_markers"`
	// Priority orders OTD statuses for display; empty uses the built-in order.
	Priority []classify.Rule `mapstructure:"priority"`
}

// Policy builds the classification policy.
func (c ClassificationConfig) Policy() classify.Policy {
	rules := c.Priority
	if len(rules) == 0 {
		rules = classify.DefaultPriorityRules()
	}

	return classify.Policy{
		Critical:      classify.NewMatcher(c.CriticalLabels...),
		SplitLowYield: classify.NewMatcher(c.SplitMarkers...),
		SummaryRow:    classify.NewMatcher(c.SummaryMarkers...),
		Priority:      classify.Priority{Rules: rules},
	}
}

// AttendanceConfig holds the team roster settings.
type AttendanceConfig struct {
	TeamSize int      `mapstructure:"team_size"`
	Shifts   []string `mapstructure:"shifts"`
	// Ledger is a SQLite file used instead of the record sheets when set.
	Ledger string `mapstructure:"ledger"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ObservabilityConfig holds OpenTelemetry export settings.
type ObservabilityConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("shiftreport")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("$HOME/.config/shiftreport")
	}

	viperCfg.SetEnvPrefix("SHIFTREPORT")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	// Sheet defaults.
	setSheetDefaults(viperCfg, "sheets.lots", DefaultLotsURL, sheets.LotsWorksheet)
	setSheetDefaults(viperCfg, "sheets.members", DefaultMembersURL, sheets.MembersWorksheet)
	setSheetDefaults(viperCfg, "sheets.attendance", DefaultAttendanceURL, sheets.AttendanceWorksheet)
	setSheetDefaults(viperCfg, "sheets.detape", DefaultDetapeURL, sheets.DetapeWorksheet)
	viperCfg.SetDefault("sheets.credentials_file", defaultCredentialsFile)
	viperCfg.SetDefault("sheets.secrets_file", credentials.DefaultSecretsFile)

	// Session defaults.
	viperCfg.SetDefault("session.dir", defaultSessionDir)
	viperCfg.SetDefault("session.codec", defaultSessionCodec)

	// Classification defaults.
	viperCfg.SetDefault("classification.critical_labels", classify.DefaultCriticalLabels)
	viperCfg.SetDefault("classification.split_markers", classify.DefaultSplitMarkers)
	viperCfg.SetDefault("classification.summary_markers", classify.DefaultSummaryMarkers)

	// Attendance defaults.
	viperCfg.SetDefault("attendance.team_size", attendance.DefaultTeamSize)
	viperCfg.SetDefault("attendance.shifts", attendance.DefaultShifts)
	viperCfg.SetDefault("attendance.ledger", "")

	// Logging defaults.
	viperCfg.SetDefault("logging.level", defaultLogLevel)
	viperCfg.SetDefault("logging.format", defaultLogFormat)

	// Observability defaults.
	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_headers", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.environment", "")
	viperCfg.SetDefault("observability.sample_ratio", 0.0)
}

func setSheetDefaults(viperCfg *viper.Viper, key, url string, ws sheets.Worksheet) {
	viperCfg.SetDefault(key+".url", url)
	viperCfg.SetDefault(key+".worksheet", ws.Preferred)
	viperCfg.SetDefault(key+".fallbacks", ws.Fallbacks)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if config.Attendance.TeamSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTeamSize, config.Attendance.TeamSize)
	}

	if len(config.Attendance.Shifts) == 0 {
		return ErrNoShifts
	}

	if len(classify.NewMatcher(config.Classification.CriticalLabels...)) == 0 {
		return ErrNoCriticalLabels
	}

	_, err := persist.CodecByName(config.Session.Codec)
	if err != nil {
		return err
	}

	if !slices.Contains([]string{"text", "json"}, strings.ToLower(config.Logging.Format)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	ratio := config.Observability.SampleRatio
	if ratio < 0 || ratio > maxSampleRatio {
		return fmt.Errorf("%w: %g", ErrInvalidSampleRatio, ratio)
	}

	return nil
}
