package providers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"qrd/internal/structures"
)

// RouterProviderInterface registers routes on a chi mux while keeping a
// plain route table for startup logging and tests.
type RouterProviderInterface interface {
	Get(url string, handler http.HandlerFunc)
	Post(url string, handler http.HandlerFunc)
	Delete(url string, handler http.HandlerFunc)
	Use(middleware func(http.Handler) http.Handler)
	GetRoutes() []structures.Route
	Handler() http.Handler
}

type RouterProvider struct {
	mux    *chi.Mux
	routes []structures.Route
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{mux: chi.NewRouter()}
}

func (rp *RouterProvider) Get(url string, handler http.HandlerFunc) {
	rp.mux.Get(url, handler)
	rp.routes = append(rp.routes, structures.Route{Method: http.MethodGet, Url: url, Handler: handler})
}

func (rp *RouterProvider) Post(url string, handler http.HandlerFunc) {
	rp.mux.Post(url, handler)
	rp.routes = append(rp.routes, structures.Route{Method: http.MethodPost, Url: url, Handler: handler})
}

func (rp *RouterProvider) Delete(url string, handler http.HandlerFunc) {
	rp.mux.Delete(url, handler)
	rp.routes = append(rp.routes, structures.Route{Method: http.MethodDelete, Url: url, Handler: handler})
}

func (rp *RouterProvider) Use(middleware func(http.Handler) http.Handler) {
	rp.mux.Use(middleware)
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.routes
}

func (rp *RouterProvider) Handler() http.Handler {
	return rp.mux
}
