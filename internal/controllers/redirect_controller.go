package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"qrd/internal/models"
	"qrd/internal/providers"
	"qrd/internal/services"
	"qrd/internal/store"
	"qrd/internal/structures"
)

// RedirectController serves the printed QR hot path: GET /r/{token}.
type RedirectController struct {
	logger  providers.Logger
	tokens  services.TokenServiceInterface
	store   store.Store
	conf    *structures.Config
	metrics providers.MetricsProviderInterface
}

func NewRedirectController(logger providers.Logger, tokens services.TokenServiceInterface, st store.Store, conf *structures.Config, metrics providers.MetricsProviderInterface) *RedirectController {
	return &RedirectController{
		logger:  logger,
		tokens:  tokens,
		store:   st,
		conf:    conf,
		metrics: metrics,
	}
}

func (rc *RedirectController) Redirect(w http.ResponseWriter, r *http.Request) {
	value := chi.URLParam(r, "token")

	state, err := rc.tokens.Classify(r.Context(), value)
	if err != nil {
		rc.logger.Errorf(providers.TypeGet, "Token classify failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rc.metrics.IncRedirect(state.String())

	switch state {
	case models.TokenCurrent:
		target, err := rc.effectiveTarget(r)
		if err != nil {
			rc.logger.Errorf(providers.TypeGet, "Redirect target lookup failed: %s", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	case models.TokenSuperseded:
		// Distinct from 404: the code once worked and was deliberately
		// retired. The body stays generic.
		http.Error(w, "This code has expired", http.StatusGone)
	default:
		http.Error(w, "Not Found", http.StatusNotFound)
	}
}

// effectiveTarget prefers the host-side setting (pushed via sync) and falls
// back to the configured static URL.
func (rc *RedirectController) effectiveTarget(r *http.Request) (string, error) {
	target, err := rc.store.GetSetting(r.Context(), store.SettingStaticRedirectURL)
	if err != nil {
		return "", err
	}
	if target == "" {
		target = rc.conf.Redirect.StaticURL
	}
	return target, nil
}
