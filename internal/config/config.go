package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod

	JWTSecret string // JWT署名シークレット
	FEURL     string // フロントURL（CORSで使う）

	DB DBConfig

	FixturePath string        // 指定時は postgres ではなく JSON ファイルを読む
	RedisURL    string        // 空ならキャッシュなし
	SnapshotTTL time.Duration // スナップショットのキャッシュ時間

	LogLevel  string // DEBUG/INFO/WARN/ERROR
	LogFormat string // json/text

	RateLimitRPS float64 // 1IPあたりの秒間リクエスト数

	CatalogMaxLimit     int     // 1ページの上限件数
	CatalogDefaultLimit int     // page 指定時の既定件数
	PriceBuckets        []int64 // 価格帯ファセットの境界
}

type DBConfig struct {
	URL      string // DATABASE_URL（最優先）
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

type options struct {
	requireAuth bool
}

type Option func(*options)

// CLI など JWT を使わない入口向け
func WithoutAuth() Option {
	return func(o *options) { o.requireAuth = false }
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GO_ENV", "dev")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_DB", "app")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", "10")
	v.SetDefault("SNAPSHOT_TTL", "30s")
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("RATE_LIMIT_RPS", "20")
	v.SetDefault("CATALOG_MAX_LIMIT", "200")
	v.SetDefault("CATALOG_DEFAULT_LIMIT", "20")
	v.SetDefault("CATALOG_PRICE_BUCKETS", "5000,10000,20000,50000")
}

// Loadは環境変数（と CONFIG_FILE があればその内容）から設定を読む。
// 環境変数が設定ファイルより優先。
func Load(opts ...Option) (Config, error) {
	o := options{requireAuth: true}
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("CONFIG_FILE %s: %w", path, err)
		}
	}

	pgPort, err := atoi(v, "POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}
	maxConns, err := atoi(v, "DB_MAX_CONNS")
	if err != nil {
		return Config{}, err
	}
	maxLimit, err := atoi(v, "CATALOG_MAX_LIMIT")
	if err != nil {
		return Config{}, err
	}
	defLimit, err := atoi(v, "CATALOG_DEFAULT_LIMIT")
	if err != nil {
		return Config{}, err
	}
	ttl, err := time.ParseDuration(strings.TrimSpace(v.GetString("SNAPSHOT_TTL")))
	if err != nil {
		return Config{}, fmt.Errorf("SNAPSHOT_TTL must be duration: %w", err)
	}
	rps, err := strconv.ParseFloat(strings.TrimSpace(v.GetString("RATE_LIMIT_RPS")), 64)
	if err != nil {
		return Config{}, fmt.Errorf("RATE_LIMIT_RPS must be number: %w", err)
	}
	buckets, err := parseBuckets(v.GetString("CATALOG_PRICE_BUCKETS"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:  v.GetString("PORT"),
		GoEnv: v.GetString("GO_ENV"),

		JWTSecret: v.GetString("JWT_SECRET"),
		FEURL:     v.GetString("FE_URL"),

		DB: DBConfig{
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("POSTGRES_HOST"),
			Port:     pgPort,
			User:     v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWORD"),
			Name:     v.GetString("POSTGRES_DB"),
			SSLMode:  v.GetString("POSTGRES_SSLMODE"),
			MaxConns: int32(maxConns),
		},

		FixturePath: v.GetString("FIXTURE_PATH"),
		RedisURL:    v.GetString("REDIS_URL"),
		SnapshotTTL: ttl,

		LogLevel:  strings.ToUpper(v.GetString("LOG_LEVEL")),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),

		RateLimitRPS: rps,

		CatalogMaxLimit:     maxLimit,
		CatalogDefaultLimit: defLimit,
		PriceBuckets:        buckets,
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if o.requireAuth && cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DB.MaxConns < 1 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be >= 1")
	}
	if cfg.SnapshotTTL < 0 {
		return Config{}, fmt.Errorf("SNAPSHOT_TTL must be >= 0")
	}
	if cfg.RateLimitRPS < 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.CatalogMaxLimit < 1 {
		return Config{}, fmt.Errorf("CATALOG_MAX_LIMIT must be >= 1")
	}
	if cfg.CatalogDefaultLimit < 1 || cfg.CatalogDefaultLimit > cfg.CatalogMaxLimit {
		return Config{}, fmt.Errorf("CATALOG_DEFAULT_LIMIT must be between 1 and CATALOG_MAX_LIMIT")
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT must be json or text")
	}

	return cfg, nil
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

func atoi(v *viper.Viper, key string) (int, error) {
	s := strings.TrimSpace(v.GetString(key))
	if s == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

// "5000,10000" → [5000 10000]。空要素は無視、負数はエラー。
func parseBuckets(s string) ([]int64, error) {
	var out []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("CATALOG_PRICE_BUCKETS must be positive numbers: %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}
