package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"qrd/internal/models"
	"qrd/internal/providers"
	"qrd/internal/services"
)

// CustomerController serves GET /c/{publicID}?k=<secret>: the private
// per-customer history page data.
type CustomerController struct {
	logger   providers.Logger
	registry services.RegistryServiceInterface
}

func NewCustomerController(logger providers.Logger, registry services.RegistryServiceInterface) *CustomerController {
	return &CustomerController{
		logger:   logger,
		registry: registry,
	}
}

type customerPageResponse struct {
	Customer *models.Customer `json:"customer"`
	Visits   []models.Visit   `json:"visits"`
}

func (cc *CustomerController) Show(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicID")
	secret := r.URL.Query().Get("k")

	customer, visits, err := cc.registry.Access(r.Context(), publicID, secret)
	if err != nil {
		if errors.Is(err, services.ErrAccessDenied) {
			// Same response whether the id is unknown or the secret is
			// wrong; a public_id printed on a card must not be probeable.
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		cc.logger.Errorf(providers.TypeGet, "Customer access failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(customerPageResponse{Customer: customer, Visits: visits})
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}
