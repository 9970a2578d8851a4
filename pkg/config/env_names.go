package config

// EnvPrefix is passed to envconfig; individual fields carry fully
// qualified names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "SCENTRA_APP_ENV"
	EnvPort     = "SCENTRA_APP_PORT"
	EnvLogLevel = "SCENTRA_LOG_LEVEL"

	EnvDBDSN      = "SCENTRA_DB_DSN"
	EnvDBHost     = "SCENTRA_DB_HOST"
	EnvDBUser     = "SCENTRA_DB_USER"
	EnvDBName     = "SCENTRA_DB_NAME"
	EnvDBPassword = "SCENTRA_DB_PASSWORD"

	EnvRedisURL = "SCENTRA_REDIS_URL"

	EnvJWTSecret  = "SCENTRA_JWT_SECRET"
	EnvJWTIssuer  = "SCENTRA_JWT_ISSUER"
	EnvJWTExpMins = "SCENTRA_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID    = "SCENTRA_GCP_PROJECT_ID"
	EnvGCSBucket       = "SCENTRA_GCS_BUCKET_NAME"
	EnvGCSUploadExpiry = "SCENTRA_GCS_UPLOAD_URL_EXPIRY"
	EnvGCSDownloadExpiry = "SCENTRA_GCS_DOWNLOAD_URL_EXPIRY"

	EnvPubSubDomainTopic = "SCENTRA_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub   = "SCENTRA_PUBSUB_DOMAIN_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
