package controllers

import (
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"qrd/internal/models"
	"qrd/internal/providers"
	"qrd/internal/services"
)

// Snapshots embed whole visit histories; larger than the admin bodies but
// still bounded.
const maxSnapshotBodySize = 8 << 20 // 8 MB

// SyncController is the host side of the push protocol: POST /api/sync.
type SyncController struct {
	logger     providers.Logger
	guard      services.GuardServiceInterface
	sync       services.SyncServiceInterface
	compressor providers.CompressorInterface
}

func NewSyncController(logger providers.Logger, guard services.GuardServiceInterface, syncSvc services.SyncServiceInterface, compressor providers.CompressorInterface) *SyncController {
	return &SyncController{
		logger:     logger,
		guard:      guard,
		sync:       syncSvc,
		compressor: compressor,
	}
}

func (sc *SyncController) Push(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("X-Admin-Token")
	}
	if !sc.guard.AuthorizeSync(token) {
		// Rejected before any state is touched.
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSnapshotBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if r.Header.Get("Content-Encoding") == "zstd" {
		body, err = sc.compressor.Decompress(body)
		if err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
	}

	var snap models.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	result, err := sc.sync.Apply(r.Context(), &snap)
	if err != nil {
		if errors.Is(err, services.ErrPartialApply) {
			// Rolled back; reported distinctly from success so the editor
			// knows to retry the whole push.
			http.Error(w, "Snapshot Not Applied", http.StatusInternalServerError)
			return
		}
		sc.logger.Errorf(providers.TypePost, "Sync push failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}
