// Package syncclient implements the editor side of the snapshot push: it
// assembles the full local state into a snapshot and ships it to the remote
// host's sync endpoint.
package syncclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"qrd/internal/models"
	"qrd/internal/providers"
	"qrd/internal/services"
	"qrd/internal/store"
	"qrd/internal/structures"
)

type Client struct {
	baseURL    string
	adminToken string
	http       *http.Client
	compressor providers.CompressorInterface
	logger     providers.Logger
}

func New(conf *structures.Config, compressor providers.CompressorInterface, logger providers.Logger) (*Client, error) {
	if conf.Sync.RemoteBaseURL == "" {
		return nil, errors.New("sync.remoteBaseUrl is not configured")
	}
	if conf.Sync.RemoteAdminToken == "" {
		return nil, errors.New("sync.remoteAdminToken is not configured")
	}
	return &Client{
		baseURL:    conf.Sync.RemoteBaseURL,
		adminToken: conf.Sync.RemoteAdminToken,
		http:       &http.Client{Timeout: 30 * time.Second},
		compressor: compressor,
		logger:     logger,
	}, nil
}

// BuildSnapshot collects the complete local state. The snapshot carries
// secrets: it only ever travels to the host under the admin credential.
func BuildSnapshot(ctx context.Context, st store.Store, conf *structures.Config) (*models.Snapshot, error) {
	customers, err := st.ListCustomers(ctx, "")
	if err != nil {
		return nil, err
	}

	snap := &models.Snapshot{
		Config: models.SnapshotConfig{
			StaticRedirectURL: conf.Redirect.StaticURL,
			PublicBaseURL:     conf.Redirect.PublicBaseURL,
		},
		Rotate: conf.Sync.RotateOnPush,
	}

	for _, c := range customers {
		visits, err := st.VisitsForCustomer(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		sc := models.SnapshotCustomer{
			PublicID: c.PublicID,
			Secret:   c.Secret,
			Name:     c.Name,
			Phone:    c.Phone,
			Plate:    c.Plate,
		}
		for _, v := range visits {
			sv := models.SnapshotVisit{
				Source:    v.Source,
				VisitDate: v.VisitDate,
				Km:        v.Km,
				Notes:     v.Notes,
			}
			for _, op := range v.Operations {
				sv.Operations = append(sv.Operations, models.SnapshotOperation{Text: op.Text, Price: op.Price})
			}
			sc.Visits = append(sc.Visits, sv)
		}
		snap.Customers = append(snap.Customers, sc)
	}

	return snap, nil
}

// Push ships the snapshot zstd-compressed and returns the host's
// acknowledgement. A 403 maps to ErrAccessDenied so callers can tell a stale
// credential from a transport failure.
func (c *Client) Push(ctx context.Context, snap *models.Snapshot) (*models.SyncResult, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	compressed, err := c.compressor.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to compress snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/sync", bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "zstd")
	req.Header.Set("X-Admin-Token", c.adminToken)

	c.logger.Infof(providers.TypeApp, "Pushing snapshot: %d customers, %d bytes compressed", len(snap.Customers), len(compressed))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return nil, services.ErrAccessDenied
	default:
		return nil, fmt.Errorf("host rejected push: %s", resp.Status)
	}

	var result models.SyncResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode push result: %w", err)
	}
	return &result, nil
}
