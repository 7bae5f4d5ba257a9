package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"qrd/internal/models"
	"qrd/internal/providers"
	"qrd/internal/services"
	"qrd/internal/store"
	"qrd/internal/structures"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// AdminController is the operator surface: customer management, host config
// and the manual rotation trigger. Only mounted in "full" mode; every
// handler is gated by the shared admin credential.
type AdminController struct {
	logger   providers.Logger
	guard    services.GuardServiceInterface
	registry services.RegistryServiceInterface
	tokens   services.TokenServiceInterface
	store    store.Store
	conf     *structures.Config
}

func NewAdminController(logger providers.Logger, guard services.GuardServiceInterface, registry services.RegistryServiceInterface, tokens services.TokenServiceInterface, st store.Store, conf *structures.Config) *AdminController {
	return &AdminController{
		logger:   logger,
		guard:    guard,
		registry: registry,
		tokens:   tokens,
		store:    st,
		conf:     conf,
	}
}

// adminCustomer is the issuance side-channel: the only read path that ever
// exposes the secret.
type adminCustomer struct {
	PublicID  string    `json:"public_id"`
	Secret    string    `json:"secret"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Plate     string    `json:"plate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toAdminCustomer(c *models.Customer) adminCustomer {
	return adminCustomer{
		PublicID:  c.PublicID,
		Secret:    c.Secret,
		Name:      c.Name,
		Phone:     c.Phone,
		Plate:     c.Plate,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (ac *AdminController) authorize(w http.ResponseWriter, r *http.Request) bool {
	if !ac.guard.AuthorizeAdmin(r.URL.Query().Get("token")) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func (ac *AdminController) writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *AdminController) ListCustomers(w http.ResponseWriter, r *http.Request) {
	if !ac.authorize(w, r) {
		return
	}
	customers, err := ac.registry.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "List customers failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	out := make([]adminCustomer, 0, len(customers))
	for i := range customers {
		out = append(out, toAdminCustomer(&customers[i]))
	}
	ac.writeJSON(w, http.StatusOK, out)
}

func (ac *AdminController) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	if !ac.authorize(w, r) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Plate string `json:"plate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	c, err := ac.registry.Create(r.Context(), payload.Name, payload.Phone, payload.Plate)
	if err != nil {
		ac.logger.Errorf(providers.TypePost, "Create customer failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.writeJSON(w, http.StatusCreated, toAdminCustomer(c))
}

func (ac *AdminController) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if !ac.authorize(w, r) {
		return
	}
	err := ac.registry.Delete(r.Context(), chi.URLParam(r, "publicID"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		ac.logger.Errorf(providers.TypePost, "Delete customer failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *AdminController) AddVisit(w http.ResponseWriter, r *http.Request) {
	if !ac.authorize(w, r) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		VisitDate  string `json:"visit_date"`
		Km         string `json:"km"`
		Notes      string `json:"notes"`
		Operations []struct {
			Text  string `json:"text"`
			Price string `json:"price"`
		} `json:"operations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	visit := models.Visit{
		Source:    models.VisitSourceService,
		VisitDate: payload.VisitDate,
		Km:        payload.Km,
		Notes:     payload.Notes,
	}
	for _, op := range payload.Operations {
		visit.Operations = append(visit.Operations, models.Operation{Text: op.Text, Price: op.Price})
	}

	err := ac.registry.AddVisit(r.Context(), chi.URLParam(r, "publicID"), &visit)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		ac.logger.Errorf(providers.TypePost, "Add visit failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.writeJSON(w, http.StatusCreated, visit)
}

type hostConfigResponse struct {
	StaticRedirectURL string `json:"static_redirect_url"`
	PublicBaseURL     string `json:"public_base_url"`
}

func (ac *AdminController) GetConfig(w http.ResponseWriter, r *http.Request) {
	if !ac.authorize(w, r) {
		return
	}
	resp, err := ac.effectiveConfig(r)
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "Config lookup failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.writeJSON(w, http.StatusOK, resp)
}

func (ac *AdminController) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	if !ac.authorize(w, r) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload hostConfigResponse
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if payload.StaticRedirectURL != "" {
		if err := ac.store.PutSetting(r.Context(), store.SettingStaticRedirectURL, payload.StaticRedirectURL); err != nil {
			ac.logger.Errorf(providers.TypePost, "Config update failed: %s", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
	if payload.PublicBaseURL != "" {
		if err := ac.store.PutSetting(r.Context(), store.SettingPublicBaseURL, payload.PublicBaseURL); err != nil {
			ac.logger.Errorf(providers.TypePost, "Config update failed: %s", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	resp, err := ac.effectiveConfig(r)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.writeJSON(w, http.StatusOK, resp)
}

func (ac *AdminController) Rotate(w http.ResponseWriter, r *http.Request) {
	if !ac.authorize(w, r) {
		return
	}
	rec, err := ac.tokens.Rotate(r.Context())
	if err != nil {
		ac.logger.Errorf(providers.TypePost, "Rotation failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.writeJSON(w, http.StatusOK, rec)
}

func (ac *AdminController) effectiveConfig(r *http.Request) (*hostConfigResponse, error) {
	staticURL, err := ac.store.GetSetting(r.Context(), store.SettingStaticRedirectURL)
	if err != nil {
		return nil, err
	}
	if staticURL == "" {
		staticURL = ac.conf.Redirect.StaticURL
	}
	baseURL, err := ac.store.GetSetting(r.Context(), store.SettingPublicBaseURL)
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = ac.conf.Redirect.PublicBaseURL
	}
	return &hostConfigResponse{StaticRedirectURL: staticURL, PublicBaseURL: baseURL}, nil
}
