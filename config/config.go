// config/config.go
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// --- Sub-structs mirroring the YAML layout ---

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	LogLevel       string   `mapstructure:"logLevel"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

// SecretsConfig points at the AWS Secrets Manager entry holding the runtime bundle.
// An empty SecretID means the bundle is built from this file and the environment.
type SecretsConfig struct {
	SecretID string `mapstructure:"secretId"`
	Region   string `mapstructure:"region"`
}

type SendGridConfig struct {
	APIKey             string `mapstructure:"apiKey"`
	FromEmail          string `mapstructure:"fromEmail"`
	FromName           string `mapstructure:"fromName"`
	InvitationTemplate string `mapstructure:"invitationTemplate"`
}

type TwilioConfig struct {
	AccountSID string `mapstructure:"accountSid"`
	AuthToken  string `mapstructure:"authToken"`
	FromNumber string `mapstructure:"fromNumber"`
}

type StripeConfig struct {
	SecretKey string `mapstructure:"secretKey"`
}

type AuditLogConfig struct {
	TTL    time.Duration `mapstructure:"ttl"`
	Types  []string      `mapstructure:"types"`
	Levels []string      `mapstructure:"levels"`
}

type UploadsConfig struct {
	ChunkTTL time.Duration `mapstructure:"chunkTTL"`
}

type BackendConfig struct {
	APIKey string `mapstructure:"apiKey"`
}

type AdminConfig struct {
	SeedEmail string `mapstructure:"seedEmail"`
}

type AppConfig struct {
	BaseURL string `mapstructure:"baseURL"`
}

// --- Root config ---

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	S3       S3Config       `mapstructure:"s3"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
	SendGrid SendGridConfig `mapstructure:"sendgrid"`
	Twilio   TwilioConfig   `mapstructure:"twilio"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	AuditLog AuditLogConfig `mapstructure:"auditLog"`
	Uploads  UploadsConfig  `mapstructure:"uploads"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Admin    AdminConfig    `mapstructure:"admin"`
	App      AppConfig      `mapstructure:"app"`
}

var envBindings = map[string]string{
	"server.port":                 "SERVER_PORT",
	"server.environment":          "APP_ENV",
	"server.logLevel":             "LOG_LEVEL",
	"server.allowedOrigins":       "ALLOWED_ORIGINS",
	"mongo.uri":                   "MONGO_URI",
	"mongo.dbName":                "MONGO_DBNAME",
	"jwt.secret":                  "JWT_SECRET",
	"jwt.expiration":              "JWT_EXPIRATION",
	"s3.bucket":                   "S3_BUCKET",
	"s3.region":                   "S3_REGION",
	"s3.accessKeyID":              "S3_ACCESS_KEY_ID",
	"s3.secretAccessKey":          "S3_SECRET_ACCESS_KEY",
	"s3.cloudFrontDomain":         "S3_CLOUDFRONT_DOMAIN",
	"secrets.secretId":            "SECRETS_ID",
	"secrets.region":              "SECRETS_REGION",
	"sendgrid.apiKey":             "SENDGRID_API_KEY",
	"sendgrid.fromEmail":          "SENDGRID_FROM_EMAIL",
	"sendgrid.fromName":           "SENDGRID_FROM_NAME",
	"sendgrid.invitationTemplate": "SENDGRID_INVITATION_TEMPLATE",
	"twilio.accountSid":           "TWILIO_ACCOUNT_SID",
	"twilio.authToken":            "TWILIO_AUTH_TOKEN",
	"twilio.fromNumber":           "TWILIO_FROM_NUMBER",
	"stripe.secretKey":            "STRIPE_SECRET_KEY",
	"auditLog.ttl":                "AUDIT_LOG_TTL",
	"uploads.chunkTTL":            "UPLOAD_CHUNK_TTL",
	"backend.apiKey":              "BACKEND_API_KEY",
	"admin.seedEmail":             "ADMIN_SEED_EMAIL",
	"app.baseURL":                 "APP_BASE_URL",
}

// DefaultLogTypes is the full audit type allow-list applied when nothing is configured.
var DefaultLogTypes = []string{
	"QUERY_START", "QUERY_END",
	"MUTATION_START", "MUTATION_END",
	"CRON_JOB_START", "CRON_JOB_END",
	"API_PROCESSING_START", "API_PROCESSING_END",
}

// DefaultLogLevels is the full audit level allow-list.
var DefaultLogLevels = []string{"INFO", "ERROR"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.logLevel", "info")
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("mongo.dbName", "dockets")
	v.SetDefault("jwt.expiration", 720*time.Hour)
	v.SetDefault("auditLog.ttl", 720*time.Hour)
	v.SetDefault("auditLog.types", DefaultLogTypes)
	v.SetDefault("auditLog.levels", DefaultLogLevels)
	v.SetDefault("uploads.chunkTTL", time.Hour)
	v.SetDefault("sendgrid.fromName", "Dockets")
}

// LoadConfig reads config.yaml from path and overrides it with environment variables.
// A missing config file is not an error; the environment and defaults are used instead.
func LoadConfig(path string) (config Config, err error) {
	// .env is optional, local development only
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	setDefaults(v)

	for key, env := range envBindings {
		if err = v.BindEnv(key, env); err != nil {
			return
		}
	}

	err = v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}
