// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/msajedian/topedu/internal/app/enroll"
	coursesfeature "github.com/msajedian/topedu/internal/app/features/courses"
	healthfeature "github.com/msajedian/topedu/internal/app/features/health"
	institutionsfeature "github.com/msajedian/topedu/internal/app/features/institutions"
	"github.com/msajedian/topedu/internal/app/system/auth"
	"github.com/msajedian/topedu/internal/app/system/mailer"
	"github.com/msajedian/topedu/internal/app/system/ratelimit"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. TopEdu builds the mailer and
// the shared enrollment engine here, then mounts the feature routers.
// Bearer-token verification is applied per feature so that the public
// join routes stay open.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	mail, err := mailer.New(mailer.Config{
		Provider:           appCfg.MailProvider,
		FromAddress:        appCfg.MailFrom,
		FromName:           appCfg.MailFromName,
		SESRegion:          appCfg.SESRegion,
		SESAccessKeyID:     appCfg.SESAccessKeyID,
		SESSecretAccessKey: appCfg.SESSecretAccessKey,
	}, logger)
	if err != nil {
		logger.Error("mailer init failed", zap.Error(err))
		return nil, err
	}

	engine := enroll.New(deps.MongoDatabase, mail, enroll.Config{
		SiteName:    appCfg.SiteName,
		FrontendURL: appCfg.FrontendBaseURL,
	}, logger)

	verifier := auth.NewVerifier(appCfg.JWTSecret, logger)

	// The unauthenticated join routes share one per-IP limiter.
	publicLimiter := ratelimit.New(30, time.Minute)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	instHandler := institutionsfeature.NewHandler(deps.MongoDatabase, engine, logger)
	r.Mount("/institutions", institutionsfeature.Routes(instHandler, verifier, publicLimiter))

	coursesHandler := coursesfeature.NewHandler(deps.MongoDatabase, engine, logger)
	r.Mount("/courses", coursesfeature.Routes(coursesHandler, verifier, publicLimiter))

	return r, nil
}
