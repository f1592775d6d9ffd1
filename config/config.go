package config

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env                string            `mapstructure:"env"`
	LogLevel           string            `mapstructure:"log_level"`
	LogType            string            `mapstructure:"log_type"`
	ServiceName        string            `mapstructure:"service_name"`
	Port               string            `mapstructure:"port"`
	Version            string            `mapstructure:"version"`
	IntakeSettings     *IntakeConfig     `mapstructure:"intake"`
	ScoringSettings    *ScoringConfig    `mapstructure:"scoring"`
	SheetsSettings     *SheetsConfig     `mapstructure:"sheets"`
	CsvSettings        *CsvConfig        `mapstructure:"csv"`
	DbSettings         *DatabaseConfig   `mapstructure:"database"`
	MailSettings       *MailConfig       `mapstructure:"mail"`
	CrawlerSettings    *CrawlerConfig    `mapstructure:"crawler"`
	HarvesterSettings  *HarvesterConfig  `mapstructure:"harvester"`
	HunterSettings     *HunterConfig     `mapstructure:"hunter"`
	SearchSettings     *SearchConfig     `mapstructure:"search"`
	CacheSettings      *CacheConfig      `mapstructure:"cache"`
	ExportSettings     *ExportConfig     `mapstructure:"export"`
	S3Settings         *S3Config         `mapstructure:"s3"`
	KafkaSettings      *KafkaConfig      `mapstructure:"kafka"`
	TelemetrySettings  *TelemetryConfig  `mapstructure:"telemetry"`
	HttpClientSettings *HttpClientConfig `mapstructure:"http_client"`
}

type IntakeConfig struct {
	AdminKey     string   `mapstructure:"admin_key"`
	Sinks        []string `mapstructure:"sinks"`
	MinAge       int      `mapstructure:"min_age"`
	MaxAge       int      `mapstructure:"max_age"`
	DefaultVideo string   `mapstructure:"default_video"`
	AgencyName   string   `mapstructure:"agency_name"`
	DownloadName string   `mapstructure:"download_name"`
}

// ScoringConfig selects a named policy. Zero values keep the policy defaults.
type ScoringConfig struct {
	Policy            string   `mapstructure:"policy"`
	PriorityThreshold int      `mapstructure:"priority_threshold"`
	SweetSpot         []int    `mapstructure:"sweet_spot"`
	LowerRange        []int    `mapstructure:"lower_range"`
	BudgetLabels      []string `mapstructure:"budget_labels"`
}

type SheetsConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	Range           string `mapstructure:"range"`
}

type CsvConfig struct {
	Path string `mapstructure:"path"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
}

type MailConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	To       []string      `mapstructure:"to"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type CrawlerConfig struct {
	CrawlMechanism   int    `mapstructure:"crawl_mechanism"`
	UserAgent        string `mapstructure:"user_agent"`
	ArchiveFallback  bool   `mapstructure:"archive_fallback"`
	ArchiveTimeout   int    `mapstructure:"archive_timeout"`
	ArchiveRetries   int    `mapstructure:"archive_retries"`
	LastCrawlIndexes int    `mapstructure:"last_crawl_indexes"`
}

// PacingConfig is the per-pipeline rate limiting policy. Backoff is the single extra pause
// used after a search provider failure or an HTTP 429.
type PacingConfig struct {
	MinDelay time.Duration `mapstructure:"min_delay"`
	MaxDelay time.Duration `mapstructure:"max_delay"`
	Backoff  time.Duration `mapstructure:"backoff"`
}

type TargetConfig struct {
	URL    string `mapstructure:"url"`
	Region string `mapstructure:"region"`
}

type HarvesterConfig struct {
	Targets        []TargetConfig `mapstructure:"targets"`
	EmailLimit     int            `mapstructure:"email_limit"`
	UnknownTitle   string         `mapstructure:"unknown_title"`
	RequestTimeout time.Duration  `mapstructure:"request_timeout"`
	Pacing         *PacingConfig  `mapstructure:"pacing"`
}

type HunterConfig struct {
	Queries          []string      `mapstructure:"queries"`
	LinksPerQuery    int           `mapstructure:"links_per_query"`
	Keywords         []string      `mapstructure:"keywords"`
	PointsPerKeyword int           `mapstructure:"points_per_keyword"`
	PdfScore         int           `mapstructure:"pdf_score"`
	PdfTitle         string        `mapstructure:"pdf_title"`
	UnknownTitle     string        `mapstructure:"unknown_title"`
	ContactLimit     int           `mapstructure:"contact_limit"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	Pacing           *PacingConfig `mapstructure:"pacing"`
}

// SearchConfig selects the search provider: "duckduckgo" (HTML scraping) or "google"
// (Custom Search JSON API, needs api_key and engine_id).
type SearchConfig struct {
	Provider string        `mapstructure:"provider"`
	Endpoint string        `mapstructure:"endpoint"`
	Region   string        `mapstructure:"region"`
	Timeout  time.Duration `mapstructure:"timeout"`
	ApiKey   string        `mapstructure:"api_key"`
	EngineID string        `mapstructure:"engine_id"`
}

type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Servers     []string      `mapstructure:"servers"`
	TtlForQuery time.Duration `mapstructure:"ttl_for_query"`
}

type ExportConfig struct {
	Dir            string `mapstructure:"dir"`
	Format         string `mapstructure:"format"`
	HarvestPattern string `mapstructure:"harvest_pattern"`
	HuntPattern    string `mapstructure:"hunt_pattern"`
	UploadToS3     bool   `mapstructure:"upload_to_s3"`
}

type S3Config struct {
	AwsBaseEndpoint string `mapstructure:"aws_base_endpoint"`
	Region          string `mapstructure:"region"`
	BucketName      string `mapstructure:"bucket_name"`
	KeyPrefix       string `mapstructure:"key_prefix"`
}

type KafkaConfig struct {
	Enabled  bool            `mapstructure:"enabled"`
	Producer *ProducerConfig `mapstructure:"producer"`
}

type ProducerConfig struct {
	Addr           []string      `mapstructure:"addr"`
	WriteTopicName string        `mapstructure:"write_topic_name"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	BatchSize      int           `mapstructure:"batch_size"`
	BatchTimeout   time.Duration `mapstructure:"batch_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequiredAsks   int           `mapstructure:"required_acks"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	CollectorUrl string `mapstructure:"collector_url"`
}

type HttpClientConfig struct {
	MaxIdleConnections        int           `mapstructure:"max_idle_connections"`
	MaxIdleConnectionsPerHost int           `mapstructure:"max_idle_connections_per_host"`
	MaxConnectionsPerHost     int           `mapstructure:"max_connections_per_host"`
	IdleConnectionTimeout     time.Duration `mapstructure:"idle_connection_timeout"`
	TlsHandshakeTimeout       time.Duration `mapstructure:"tls_handshake_timeout"`
	DialTimeout               time.Duration `mapstructure:"dial_timeout"`
	DialKeepAlive             time.Duration `mapstructure:"dial_keep_alive"`
	TlsInsecureSkipVerify     bool          `mapstructure:"tls_insecure_skip_verify"`
}

func MustLoad(dir string) *Config {
	cfg, err := Load(dir)
	if err != nil {
		slog.Error("can't initialize config file.", slog.String("err", err.Error()))
		os.Exit(1)
	}

	return cfg
}

// Load reads config.yaml from dir. Environment variables override file values,
// e.g. INTAKE_ADMIN_KEY for intake.admin_key.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path.Join(dir))
	v.SetConfigName("config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_type", "text")
	v.SetDefault("service_name", "lead-hunter")
	v.SetDefault("port", "8080")

	v.SetDefault("intake.sinks", []string{"sheets", "csv"})
	v.SetDefault("intake.min_age", 10)
	v.SetDefault("intake.max_age", 35)
	v.SetDefault("intake.default_video", "Non fourni")
	v.SetDefault("intake.agency_name", "EuroPath")
	v.SetDefault("intake.download_name", "EuroPath_Leads.csv")
	v.SetDefault("scoring.policy", "A")
	v.SetDefault("sheets.range", "Candidatures!A1")
	v.SetDefault("csv.path", "candidatures_db.csv")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.timeout", 10*time.Second)

	v.SetDefault("crawler.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("crawler.archive_timeout", 30)
	v.SetDefault("crawler.archive_retries", 1)
	v.SetDefault("crawler.last_crawl_indexes", 3)

	v.SetDefault("harvester.email_limit", 3)
	v.SetDefault("harvester.unknown_title", "Titre Inconnu")
	v.SetDefault("harvester.request_timeout", 15*time.Second)
	v.SetDefault("harvester.pacing.min_delay", time.Second)
	v.SetDefault("harvester.pacing.max_delay", 3*time.Second)
	v.SetDefault("harvester.pacing.backoff", 10*time.Second)

	v.SetDefault("hunter.links_per_query", 10)
	v.SetDefault("hunter.keywords",
		[]string{"visa", "boarding", "accommodation", "price", "fees", "registration", "scholarship"})
	v.SetDefault("hunter.points_per_keyword", 10)
	v.SetDefault("hunter.pdf_score", 50)
	v.SetDefault("hunter.pdf_title", "Fichier PDF (Formulaire probable)")
	v.SetDefault("hunter.unknown_title", "Erreur")
	v.SetDefault("hunter.contact_limit", 2)
	v.SetDefault("hunter.request_timeout", 10*time.Second)
	v.SetDefault("hunter.pacing.min_delay", 2*time.Second)
	v.SetDefault("hunter.pacing.max_delay", 5*time.Second)
	v.SetDefault("hunter.pacing.backoff", 10*time.Second)

	v.SetDefault("search.provider", "duckduckgo")
	v.SetDefault("search.endpoint", "https://html.duckduckgo.com/html/")
	v.SetDefault("search.region", "us-en")
	v.SetDefault("search.timeout", 15*time.Second)
	v.SetDefault("cache.ttl_for_query", 24*time.Hour)

	v.SetDefault("export.dir", ".")
	v.SetDefault("export.format", "xlsx")
	v.SetDefault("export.harvest_pattern", "Lead_Academies_Global_Sourcing")
	v.SetDefault("export.hunt_pattern", "Chasse_Offres_{date}")

	v.SetDefault("database.port", "5432")
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("s3.key_prefix", "lead-hunter")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.producer.write_topic_name", "leads")
	v.SetDefault("kafka.producer.max_attempts", 3)
	v.SetDefault("kafka.producer.batch_size", 1)
	v.SetDefault("kafka.producer.batch_timeout", 100*time.Millisecond)
	v.SetDefault("kafka.producer.required_acks", 1)
	v.SetDefault("telemetry.enabled", false)

	v.SetDefault("http_client.max_idle_connections", 10)
	v.SetDefault("http_client.max_idle_connections_per_host", 2)
	v.SetDefault("http_client.idle_connection_timeout", 90*time.Second)
	v.SetDefault("http_client.tls_handshake_timeout", 10*time.Second)
	v.SetDefault("http_client.dial_timeout", 10*time.Second)
	v.SetDefault("http_client.dial_keep_alive", 30*time.Second)
}
