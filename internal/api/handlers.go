package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/susu3304/chipbot/internal/db"
	"github.com/susu3304/chipbot/internal/ledger"
)

const maxHistoryLimit = 100

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleGame(w http.ResponseWriter, r *http.Request) {
	st := a.state.State()
	if st.Players == nil {
		st.Players = []ledger.PlayerView{}
	}
	a.writeJSON(w, http.StatusOK, st)
}

func (a *API) handleListSettlements(w http.ResponseWriter, r *http.Request) {
	if a.history == nil {
		http.Error(w, "settlement archive is not configured", http.StatusServiceUnavailable)
		return
	}

	limit := a.historyLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	limit = min(limit, maxHistoryLimit)

	settlements, err := a.history.ListSettlements(r.Context(), limit)
	if err != nil {
		a.logger.Error("failed to list settlements", zap.Error(err))
		http.Error(w, "failed to list settlements", http.StatusInternalServerError)
		return
	}
	if settlements == nil {
		settlements = []db.Settlement{}
	}
	a.writeJSON(w, http.StatusOK, settlements)
}

func (a *API) handleGetSettlement(w http.ResponseWriter, r *http.Request) {
	if a.history == nil {
		http.Error(w, "settlement archive is not configured", http.StatusServiceUnavailable)
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid settlement id", http.StatusBadRequest)
		return
	}

	s, err := a.history.GetSettlement(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "settlement not found", http.StatusNotFound)
		return
	}
	if err != nil {
		a.logger.Error("failed to get settlement", zap.String("settlement_id", id.String()), zap.Error(err))
		http.Error(w, "failed to get settlement", http.StatusInternalServerError)
		return
	}
	a.writeJSON(w, http.StatusOK, s)
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("failed to encode response", zap.Error(err))
	}
}
