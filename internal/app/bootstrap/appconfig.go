// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS, request limits). AppConfig is everything specific to
// TopEdu: storage, auth verification, and mail delivery.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Bearer-token verification. Tokens are issued by an upstream
	// identity service; this is the shared HS256 secret.
	JWTSecret string

	// Join links embedded in invitation emails point at the frontend.
	FrontendBaseURL string
	SiteName        string

	// Mail delivery configuration
	MailProvider       string // "ses" or "noop"
	MailFrom           string // From email address
	MailFromName       string // From display name
	SESRegion          string // AWS region for SES
	SESAccessKeyID     string // AWS access key id for SES
	SESSecretAccessKey string // AWS secret access key for SES
}
