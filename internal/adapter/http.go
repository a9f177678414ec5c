package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/ykarpov/go-vault-sync/internal/config"
	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/internal/utils"
	"github.com/ykarpov/go-vault-sync/models"
)

type httpServerAdapter struct {
	client *utils.HTTPClient
	token  string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of
// [ServerAdapter]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress and configures the underlying client with the
// resolved base URL and request timeout.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed
// as a valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, logger *logger.Logger) (ServerAdapter, error) {
	client := utils.NewHTTPClient(adapterCfg.RequestTimeout)
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client.SetBaseURL(baseURL)

	return &httpServerAdapter{client: client, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [ServerAdapter]. It stores token (whitespace-trimmed)
// for use in the Authorization header of subsequent authenticated requests.
func (h *httpServerAdapter) SetToken(token string) {
	h.token = strings.TrimSpace(token)
}

// Token implements [ServerAdapter].
func (h *httpServerAdapter) Token() string {
	return h.token
}

// Register implements [ServerAdapter]. It POSTs the user credentials to
// POST /api/auth/register. On success the bearer token is extracted from
// the Authorization response header and stored via SetToken.
func (h *httpServerAdapter) Register(ctx context.Context, user models.User) (models.User, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		Post("/api/auth/register")
	if err != nil {
		return models.User{}, fmt.Errorf("register request: %w: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.User{}, err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.User{}, fmt.Errorf("register parse bearer token: %w", err)
	}

	h.SetToken(token)
	return user, nil
}

// Login implements [ServerAdapter]. It POSTs the pre-computed auth hash to
// POST /api/auth/login, stores the bearer token from the Authorization
// response header, and returns the server-side user record.
func (h *httpServerAdapter) Login(ctx context.Context, user models.User) (models.User, error) {
	var foundUser models.User

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		SetResult(&foundUser).
		Post("/api/auth/login")
	if err != nil {
		return user, fmt.Errorf("login request: %w: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return user, err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return user, fmt.Errorf("login parse bearer token: %w", err)
	}

	h.SetToken(token)
	return foundUser, nil
}

// RequestSalt implements [ServerAdapter]. It POSTs user.Login to
// POST /api/auth/params and returns a partial [models.User] containing only
// Login and SRPSalt.
func (h *httpServerAdapter) RequestSalt(ctx context.Context, user models.User) (models.User, error) {
	var foundUser models.User

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.User{Login: user.Login}).
		SetResult(&foundUser).
		Post("/api/auth/params")
	if err != nil {
		return user, fmt.Errorf("request salt: %w: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return user, err
	}

	return models.User{Login: user.Login, SRPSalt: foundUser.SRPSalt}, nil
}

// Status implements [ServerAdapter]. A transport failure is reported as the
// offline sentinel response, not as an error, so callers can treat "no
// server" as a state rather than a fault. Auth failures do propagate.
func (h *httpServerAdapter) Status(ctx context.Context) (models.StatusResponse, error) {
	var status models.StatusResponse

	resp, err := h.authedRequest(ctx).
		SetResult(&status).
		Get("/api/auth/status")
	if err != nil {
		h.logger.Debug().Err(err).Msg("status probe failed, reporting offline")
		return models.StatusResponse{ServerVersion: models.OfflineServerVersion}, nil
	}
	if err = mapHTTPError(resp); err != nil {
		return models.StatusResponse{}, err
	}

	return status, nil
}

// DownloadVault implements [ServerAdapter]. It GETs /api/vault and returns
// the current authoritative blob with its revision.
func (h *httpServerAdapter) DownloadVault(ctx context.Context) (models.VaultResponse, error) {
	var vault models.VaultResponse

	resp, err := h.authedRequest(ctx).
		SetResult(&vault).
		Get("/api/vault")
	if err != nil {
		return models.VaultResponse{}, fmt.Errorf("download vault: %w: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.VaultResponse{}, err
	}

	return vault, nil
}

// SaveVault implements [ServerAdapter]. It POSTs the blob with the claimed
// current revision to POST /api/vault. A CAS rejection surfaces as an
// *OutdatedError carrying the server's actual revision.
func (h *httpServerAdapter) SaveVault(ctx context.Context, req models.SaveVaultRequest) (models.SaveVaultResponse, error) {
	var save models.SaveVaultResponse

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&save).
		Post("/api/vault")
	if err != nil {
		return models.SaveVaultResponse{}, fmt.Errorf("save vault: %w: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SaveVaultResponse{}, err
	}

	return save, nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if h.token != "" {
		req.SetHeader("Authorization", "Bearer "+h.token)
	}
	return req
}
