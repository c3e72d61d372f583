// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for TopEdu.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: TOPEDU_MONGO_URI, TOPEDU_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "topedu", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer-token verification
	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Shared HS256 secret for bearer token verification (must be strong in production)"},

	// Frontend links embedded in invitation emails
	{Name: "frontend_base_url", Default: "http://localhost:3000", Desc: "Base URL for join links in invitation emails"},
	{Name: "site_name", Default: "TopEdu", Desc: "Display name used in email templates"},

	// Mail delivery configuration
	{Name: "mail_provider", Default: "noop", Desc: "Mail provider: 'ses' or 'noop'"},
	{Name: "mail_from", Default: "noreply@topedu.app", Desc: "From email address"},
	{Name: "mail_from_name", Default: "TopEdu", Desc: "From display name"},
	{Name: "ses_region", Default: "", Desc: "AWS region for SES"},
	{Name: "ses_access_key_id", Default: "", Desc: "AWS access key id for SES"},
	{Name: "ses_secret_access_key", Default: "", Desc: "AWS secret access key for SES"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, TOPEDU_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TOPEDU", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),

		FrontendBaseURL: appValues.String("frontend_base_url"),
		SiteName:        appValues.String("site_name"),

		MailProvider:       appValues.String("mail_provider"),
		MailFrom:           appValues.String("mail_from"),
		MailFromName:       appValues.String("mail_from_name"),
		SESRegion:          appValues.String("ses_region"),
		SESAccessKeyID:     appValues.String("ses_access_key_id"),
		SESSecretAccessKey: appValues.String("ses_secret_access_key"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// TopEdu validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and refuses to start a
// SES-backed mailer without credentials.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret must be set")
	}

	if appCfg.MailProvider == "ses" {
		if appCfg.SESRegion == "" || appCfg.SESAccessKeyID == "" || appCfg.SESSecretAccessKey == "" {
			return fmt.Errorf("mail_provider 'ses' requires ses_region, ses_access_key_id, and ses_secret_access_key")
		}
	}

	return nil
}
