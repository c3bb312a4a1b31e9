package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	RateLimit     RateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	GCS           GCSConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	WhatsApp      WhatsAppConfig
	Booking       BookingConfig
	Cron          CronConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if _, err := cfg.Booking.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SALONBOOK_APP_ENV" required:"true"`
	Port         string `envconfig:"SALONBOOK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SALONBOOK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SALONBOOK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SALONBOOK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SALONBOOK_DB_DSN"`
	Driver string `envconfig:"SALONBOOK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SALONBOOK_DB_HOST"`
	LegacyPort     int    `envconfig:"SALONBOOK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SALONBOOK_DB_USER"`
	LegacyPassword string `envconfig:"SALONBOOK_DB_PASSWORD"`
	LegacyName     string `envconfig:"SALONBOOK_DB_NAME"`
	LegacySSLMode  string `envconfig:"SALONBOOK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SALONBOOK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SALONBOOK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SALONBOOK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SALONBOOK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SALONBOOK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SALONBOOK_REDIS_ADDR"`
	Password     string        `envconfig:"SALONBOOK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SALONBOOK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SALONBOOK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SALONBOOK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SALONBOOK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SALONBOOK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SALONBOOK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SALONBOOK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SALONBOOK_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SALONBOOK_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SALONBOOK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SALONBOOK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SALONBOOK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SALONBOOK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SALONBOOK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SALONBOOK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SALONBOOK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SALONBOOK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SALONBOOK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SALONBOOK_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SALONBOOK_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SALONBOOK_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// RateLimitConfig throttles authenticated API traffic per user.
type RateLimitConfig struct {
	Window time.Duration `envconfig:"SALONBOOK_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int           `envconfig:"SALONBOOK_RATE_LIMIT_REQUESTS" default:"120"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SALONBOOK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SALONBOOK_AUTO_MIGRATE" default:"false"`
	// SelfServiceBooking lets clients book without staff involvement.
	SelfServiceBooking bool `envconfig:"SALONBOOK_FEATURE_SELF_SERVICE_BOOKING" default:"true"`
	WhatsAppEnabled    bool `envconfig:"SALONBOOK_FEATURE_WHATSAPP" default:"true"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"SALONBOOK_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SALONBOOK_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SALONBOOK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SALONBOOK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"SALONBOOK_GCS_BUCKET_NAME"`
	AvatarPrefix  string `envconfig:"SALONBOOK_GCS_AVATAR_PREFIX" default:"avatars"`
	PublicBaseURL string `envconfig:"SALONBOOK_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
	MaxAvatarKB   int    `envconfig:"SALONBOOK_GCS_MAX_AVATAR_KB" default:"2048"`
}

type PubSubConfig struct {
	AppointmentsTopic        string `envconfig:"SALONBOOK_PUBSUB_APPOINTMENTS_TOPIC" default:"sb-appointment-events"`
	PlansTopic               string `envconfig:"SALONBOOK_PUBSUB_PLANS_TOPIC" default:"sb-plan-events"`
	NotificationSubscription string `envconfig:"SALONBOOK_PUBSUB_NOTIFICATION_SUBSCRIPTION" default:"sb-notifications"`
	PlanNotificationSub      string `envconfig:"SALONBOOK_PUBSUB_PLAN_NOTIFICATION_SUBSCRIPTION" default:"sb-plan-notifications"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SALONBOOK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SALONBOOK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SALONBOOK_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"SALONBOOK_OUTBOX_RETENTION_DAYS" default:"30"`
}

// WhatsAppConfig points at the HTTP gateway that relays WhatsApp messages.
type WhatsAppConfig struct {
	BaseURL        string        `envconfig:"SALONBOOK_WHATSAPP_BASE_URL"`
	Username       string        `envconfig:"SALONBOOK_WHATSAPP_USERNAME"`
	Password       string        `envconfig:"SALONBOOK_WHATSAPP_PASSWORD"`
	Timeout        time.Duration `envconfig:"SALONBOOK_WHATSAPP_TIMEOUT" default:"10s"`
	DefaultCountry string        `envconfig:"SALONBOOK_WHATSAPP_DEFAULT_COUNTRY_CODE" default:"55"`
	BusinessName   string        `envconfig:"SALONBOOK_BUSINESS_NAME" default:"SalonBook"`
}

type BookingConfig struct {
	Timezone string `envconfig:"SALONBOOK_BOOKING_TIMEZONE" default:"America/Sao_Paulo"`
	// ReminderLeadDays is how many days ahead reminders are sent.
	ReminderLeadDays int `envconfig:"SALONBOOK_BOOKING_REMINDER_LEAD_DAYS" default:"1"`
	ReminderBatch    int `envconfig:"SALONBOOK_BOOKING_REMINDER_BATCH" default:"100"`
}

// Location resolves the configured booking timezone.
func (b BookingConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(b.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvBookingTimezone, name, err)
	}
	return loc, nil
}

type CronConfig struct {
	Interval time.Duration `envconfig:"SALONBOOK_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"SALONBOOK_CRON_LOCK_TTL" default:"55m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SALONBOOK_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
		if db.DSN == "" {
			db.DSN = defaultSQLiteDSN
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
