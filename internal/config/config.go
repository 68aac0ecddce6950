package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/admet-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Ingest IngestConfig `yaml:"ingest" mapstructure:"ingest"`
	Report ReportConfig `yaml:"report" mapstructure:"report"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Triage TriageConfig `yaml:"triage" mapstructure:"triage"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`

	RetryAttempts int           `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryBackoff  time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// BatchConfig configures batch evaluation.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// IngestConfig configures property table assembly.
type IngestConfig struct {
	PoseGlob            string  `yaml:"pose_glob" mapstructure:"pose_glob"`
	DefaultDockingScore float64 `yaml:"default_docking_score" mapstructure:"default_docking_score"`
}

// ReportConfig configures report output.
type ReportConfig struct {
	OutputDir string   `yaml:"output_dir" mapstructure:"output_dir"`
	Formats   []string `yaml:"formats" mapstructure:"formats"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// TriageConfig holds every threshold used by the triage stages.
type TriageConfig struct {
	HERG           model.RiskBands      `yaml:"herg" mapstructure:"herg"`
	DILI           model.RiskBands      `yaml:"dili" mapstructure:"dili"`
	Developability DevelopabilityConfig `yaml:"developability" mapstructure:"developability"`
	Penalty        PenaltyConfig        `yaml:"penalty" mapstructure:"penalty"`
	Decision       DecisionConfig       `yaml:"decision" mapstructure:"decision"`
}

// DevelopabilityConfig lists the soft drug-likeness constraints.
type DevelopabilityConfig struct {
	SA   Constraint `yaml:"sa" mapstructure:"sa"`
	QED  Constraint `yaml:"qed" mapstructure:"qed"`
	MW   Constraint `yaml:"mw" mapstructure:"mw"`
	TPSA Constraint `yaml:"tpsa" mapstructure:"tpsa"`
	LogP Constraint `yaml:"logp" mapstructure:"logp"`
}

// Constraint is a two-level threshold on one numeric property. For
// higher-is-worse properties values above Reject reject and values from
// Review up to Reject review; LowerIsWorse mirrors both comparisons.
// ReviewInclusive controls whether a value equal to Review triggers review.
type Constraint struct {
	Label           string  `yaml:"label" mapstructure:"label"`
	Default         float64 `yaml:"default" mapstructure:"default"`
	Reject          float64 `yaml:"reject" mapstructure:"reject"`
	Review          float64 `yaml:"review" mapstructure:"review"`
	LowerIsWorse    bool    `yaml:"lower_is_worse" mapstructure:"lower_is_worse"`
	ReviewInclusive bool    `yaml:"review_inclusive" mapstructure:"review_inclusive"`
	Precision       int     `yaml:"precision" mapstructure:"precision"`
}

// PenaltyConfig holds the score deductions of the composite scorer.
type PenaltyConfig struct {
	ADMEFlag        int     `yaml:"adme_flag" mapstructure:"adme_flag"`
	HERGMedium      int     `yaml:"herg_medium" mapstructure:"herg_medium"`
	SABand          int     `yaml:"sa_band" mapstructure:"sa_band"`
	QEDLow          int     `yaml:"qed_low" mapstructure:"qed_low"`
	PPBThreshold    float64 `yaml:"ppb_threshold" mapstructure:"ppb_threshold"`
	PPBDefault      float64 `yaml:"ppb_default" mapstructure:"ppb_default"`
	SAFloor         float64 `yaml:"sa_floor" mapstructure:"sa_floor"`
	SABandMin       float64 `yaml:"sa_band_min" mapstructure:"sa_band_min"`
	SADefault       float64 `yaml:"sa_default" mapstructure:"sa_default"`
	QEDPenaltyBelow float64 `yaml:"qed_penalty_below" mapstructure:"qed_penalty_below"`
	QEDDefault      float64 `yaml:"qed_default" mapstructure:"qed_default"`
}

// DecisionConfig holds the score cut-offs of the final label.
type DecisionConfig struct {
	AcceptMin int `yaml:"accept_min" mapstructure:"accept_min"`
	ReviewMin int `yaml:"review_min" mapstructure:"review_min"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ADMET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "admet.db")
	v.SetDefault("store.retry_attempts", 3)
	v.SetDefault("store.retry_backoff", "500ms")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("ingest.pose_glob", "*ligand_poses.pdb")
	v.SetDefault("ingest.default_docking_score", -7.0)
	v.SetDefault("report.output_dir", "results")
	v.SetDefault("report.formats", []string{"csv"})
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit_rps", 20)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("server.allowed_origins", []string{"*"})
	setTriageDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setTriageDefaults(v *viper.Viper) {
	v.SetDefault("triage.herg.high", 0.7)
	v.SetDefault("triage.herg.medium", 0.3)
	v.SetDefault("triage.dili.high", 0.7)
	v.SetDefault("triage.dili.medium", 0.3)

	constraints := map[string]Constraint{
		"sa":   {Label: "SA", Default: 5.0, Reject: 6.0, Review: 5.0, Precision: 1},
		"qed":  {Label: "QED", Default: 0.6, Reject: 0.4, Review: 0.6, LowerIsWorse: true, Precision: 1},
		"mw":   {Label: "MW", Default: 400, Reject: 550, Review: 500, ReviewInclusive: true},
		"tpsa": {Label: "TPSA", Default: 100, Reject: 160, Review: 140, ReviewInclusive: true},
		"logp": {Label: "WLogP", Default: 3, Reject: 6, Review: 5, ReviewInclusive: true},
	}
	for key, c := range constraints {
		prefix := "triage.developability." + key + "."
		v.SetDefault(prefix+"label", c.Label)
		v.SetDefault(prefix+"default", c.Default)
		v.SetDefault(prefix+"reject", c.Reject)
		v.SetDefault(prefix+"review", c.Review)
		v.SetDefault(prefix+"lower_is_worse", c.LowerIsWorse)
		v.SetDefault(prefix+"review_inclusive", c.ReviewInclusive)
		v.SetDefault(prefix+"precision", c.Precision)
	}

	v.SetDefault("triage.penalty.adme_flag", 5)
	v.SetDefault("triage.penalty.herg_medium", 10)
	v.SetDefault("triage.penalty.sa_band", 10)
	v.SetDefault("triage.penalty.qed_low", 10)
	v.SetDefault("triage.penalty.ppb_threshold", 95.0)
	v.SetDefault("triage.penalty.ppb_default", 90.0)
	v.SetDefault("triage.penalty.sa_floor", 6.0)
	v.SetDefault("triage.penalty.sa_band_min", 5.0)
	v.SetDefault("triage.penalty.sa_default", 5.0)
	v.SetDefault("triage.penalty.qed_penalty_below", 0.6)
	v.SetDefault("triage.penalty.qed_default", 0.6)

	v.SetDefault("triage.decision.accept_min", 75)
	v.SetDefault("triage.decision.review_min", 60)
}

// Validate checks that the settings required by a command mode are present
// and within bounds. Modes: "triage", "store", "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "triage":
		if c.Report.OutputDir == "" {
			errs = append(errs, "report.output_dir is required")
		}
		for _, f := range c.Report.Formats {
			switch f {
			case "csv", "json", "xlsx":
			default:
				errs = append(errs, fmt.Sprintf("report.formats: unsupported format %q", f))
			}
		}
	case "store":
		if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
			errs = append(errs, fmt.Sprintf("store.driver must be sqlite or postgres (got %q)", c.Store.Driver))
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
		if c.Store.RetryAttempts < 1 {
			errs = append(errs, "store.retry_attempts must be >= 1")
		}
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.RateLimitRPS <= 0 {
			errs = append(errs, "server.rate_limit_rps must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 64 {
		errs = append(errs, "batch.concurrency must be between 1 and 64")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
