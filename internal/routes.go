package internal

import (
	"net/http"

	"qrd/internal/controllers"
	"qrd/internal/providers"
	"qrd/internal/structures"
)

func InitRoutes(redirectController *controllers.RedirectController, customerController *controllers.CustomerController, adminController *controllers.AdminController, syncController *controllers.SyncController, metrics providers.MetricsProviderInterface, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	// Middleware must be mounted before routes so chi can resolve the
	// route pattern for the metrics endpoint label.
	routers.Use(func(next http.Handler) http.Handler {
		return providers.MetricsMiddleware(metrics, next)
	})

	routers.Get("/r/{token}", redirectController.Redirect)
	routers.Get("/c/{publicID}", customerController.Show)
	routers.Post("/api/sync", syncController.Push)

	if conf.Mode == structures.ModeFull {
		routers.Get("/admin/customers", adminController.ListCustomers)
		routers.Post("/admin/customers", adminController.CreateCustomer)
		routers.Delete("/admin/customers/{publicID}", adminController.DeleteCustomer)
		routers.Post("/admin/customers/{publicID}/visits", adminController.AddVisit)
		routers.Get("/admin/config", adminController.GetConfig)
		routers.Post("/admin/config", adminController.UpdateConfig)
		routers.Post("/admin/rotate", adminController.Rotate)
	}

	return routers
}
