package config

const EnvPrefix = "SALONBOOK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:salonbook.db?cache=shared&_foreign_keys=on"
)

const (
	EnvAppEnv   = "SALONBOOK_APP_ENV"
	EnvPort     = "SALONBOOK_APP_PORT"
	EnvLogLevel = "SALONBOOK_LOG_LEVEL"

	EnvDBDSN    = "SALONBOOK_DB_DSN"
	EnvDBDriver = "SALONBOOK_DB_DRIVER"
	EnvDBHost   = "SALONBOOK_DB_HOST"
	EnvDBPort   = "SALONBOOK_DB_PORT"
	EnvDBUser   = "SALONBOOK_DB_USER"
	EnvDBPass   = "SALONBOOK_DB_PASSWORD"
	EnvDBName   = "SALONBOOK_DB_NAME"

	EnvRedisURL = "SALONBOOK_REDIS_URL"

	EnvJWTSecret              = "SALONBOOK_JWT_SECRET"
	EnvJWTIssuer              = "SALONBOOK_JWT_ISSUER"
	EnvJWTExpMins             = "SALONBOOK_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SALONBOOK_REFRESH_TOKEN_TTL_MINUTES"

	EnvUseSQLite   = "SALONBOOK_USE_SQLITE"
	EnvAutoMigrate = "SALONBOOK_AUTO_MIGRATE"

	EnvGCPProjectID = "SALONBOOK_GCP_PROJECT_ID"
	EnvGCSBucket    = "SALONBOOK_GCS_BUCKET_NAME"

	EnvPubSubAppointmentsTopic = "SALONBOOK_PUBSUB_APPOINTMENTS_TOPIC"
	EnvPubSubPlansTopic        = "SALONBOOK_PUBSUB_PLANS_TOPIC"
	EnvPubSubNotificationSub   = "SALONBOOK_PUBSUB_NOTIFICATION_SUBSCRIPTION"

	EnvWhatsAppBaseURL = "SALONBOOK_WHATSAPP_BASE_URL"

	EnvBookingTimezone     = "SALONBOOK_BOOKING_TIMEZONE"
	EnvBookingReminderLead = "SALONBOOK_BOOKING_REMINDER_LEAD_DAYS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
