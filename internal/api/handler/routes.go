package handler

import (
	"net/http"

	"github.com/lfvieira/ads-sync-api/internal/api/handler/router"
	"github.com/lfvieira/ads-sync-api/internal/usecases/authenticating"
	"github.com/lfvieira/ads-sync-api/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/token",
			Method:  http.MethodPost,
			Handler: IssueToken(service),
		},
	}
}

func Sync(services *SyncServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/sync/:type/run",
			Method:      http.MethodPost,
			Handler:     TriggerSync(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/sync/status",
			Method:      http.MethodGet,
			Handler:     GetSyncStatus(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}

func ClientStatus(client ClientStatusProvider) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/client/status",
			Method:      http.MethodGet,
			Handler:     GetClientStatus(client),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}

func CronJobs(services *SyncServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}
