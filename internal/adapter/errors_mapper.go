package adapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/ykarpov/go-vault-sync/models"
)

// mapHTTPError translates a non-2xx response into the package's sentinel
// errors. A 409 is decoded as a [models.SaveVaultResponse] so the resulting
// *OutdatedError carries the server's actual revision.
func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))

	switch resp.StatusCode() {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, body)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, body)
	case http.StatusConflict:
		var save models.SaveVaultResponse
		if err := json.Unmarshal(resp.Body(), &save); err == nil && save.Status == models.SaveStatusOutdated {
			return &OutdatedError{ActualRevision: save.NewRevisionNumber}
		}
		return &OutdatedError{}
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrServer, body)
	default:
		if body == "" {
			body = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
	}
}
