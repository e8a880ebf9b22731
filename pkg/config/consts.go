package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "DDSC"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside envconfig tags.
const (
	EnvAppEnv   = "DDSC_APP_ENV"
	EnvPort     = "DDSC_APP_PORT"
	EnvDBDSN    = "DDSC_DB_DSN"
	EnvDBHost   = "DDSC_DB_HOST"
	EnvDBUser   = "DDSC_DB_USER"
	EnvDBName   = "DDSC_DB_NAME"
	EnvRedisURL = "DDSC_REDIS_URL"

	EnvGCPProjectID          = "DDSC_GCP_PROJECT_ID"
	EnvPubSubDomainTopic     = "DDSC_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub       = "DDSC_PUBSUB_DOMAIN_SUBSCRIPTION"
	EnvSendgridAPIKey        = "DDSC_SENDGRID_API_KEY"
	EnvSendgridFromEmail     = "DDSC_SENDGRID_FROM_EMAIL"
	EnvWaitlistPromoteNotify = "DDSC_WAITLIST_PROMOTE_NOTIFY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
