package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ykarpov/go-vault-sync/internal/app"
	"github.com/ykarpov/go-vault-sync/internal/ledger"
	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/internal/utils"
	"github.com/ykarpov/go-vault-sync/models"
)

// status reports the server version and the caller's current vault
// revision, so a client can decide whether to sync at all.
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.status").Msg("no user ID was given")
		http.Error(w, app.MsgNoUserIDProvided, http.StatusBadRequest)
		return
	}

	response, err := h.services.VaultService.Status(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.status").Msg("error getting vault status")
		http.Error(w, app.MsgInternalServerError, statusFromError(err))
		return
	}

	utils.WriteJSON(w, response, http.StatusOK)
}

func (h *Handler) downloadVault(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.downloadVault").Msg("no user ID was given")
		http.Error(w, app.MsgNoUserIDProvided, http.StatusBadRequest)
		return
	}

	response, err := h.services.VaultService.Download(ctx, userID)
	if err != nil {
		if errors.Is(err, ledger.ErrVaultNotFound) {
			http.Error(w, app.MsgVaultNotFound, http.StatusNotFound)
			return
		}
		log.Err(err).Str("func", "*Handler.downloadVault").Msg("error downloading vault")
		http.Error(w, app.MsgInternalServerError, statusFromError(err))
		return
	}

	utils.WriteJSON(w, response, http.StatusOK)
}

// saveVault runs the compare-and-swap. An accepted save answers 200; a
// CAS rejection answers 409 with the same response body, carrying the
// server's actual revision so the client can fetch and merge without
// another probe.
func (h *Handler) saveVault(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.saveVault").Msg("no user ID was given")
		http.Error(w, app.MsgNoUserIDProvided, http.StatusBadRequest)
		return
	}

	var request models.SaveVaultRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Str("func", "*Handler.saveVault").Msg("invalid JSON was passed")
		http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	response, err := h.services.VaultService.Save(ctx, userID, request)
	if err != nil {
		log.Err(err).Str("func", "*Handler.saveVault").Msg("error saving vault")
		http.Error(w, app.MsgInvalidDataProvided, statusFromError(err))
		return
	}

	if response.Status == models.SaveStatusOutdated {
		h.metrics.VaultSavesTotal.WithLabelValues(string(models.SaveStatusOutdated)).Inc()
		log.Info().
			Int64("claimed", request.CurrentRevisionNumber).
			Int64("actual", response.NewRevisionNumber).
			Msg("vault save rejected: outdated revision")
		utils.WriteJSON(w, response, http.StatusConflict)
		return
	}

	h.metrics.VaultSavesTotal.WithLabelValues(string(models.SaveStatusOk)).Inc()
	if response.RecoveryGap {
		h.metrics.RecoveryGapsTotal.Inc()
	}

	utils.WriteJSON(w, response, http.StatusOK)
}

func (h *Handler) vaultHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.vaultHistory").Msg("no user ID was given")
		http.Error(w, app.MsgNoUserIDProvided, http.StatusBadRequest)
		return
	}

	limit := 0
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed < 0 {
			http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	response, err := h.services.VaultService.History(ctx, userID, limit)
	if err != nil {
		log.Err(err).Str("func", "*Handler.vaultHistory").Msg("error listing vault history")
		http.Error(w, app.MsgInternalServerError, statusFromError(err))
		return
	}

	utils.WriteJSON(w, response, http.StatusOK)
}
