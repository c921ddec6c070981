package parcels_api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/BearBump/ParcelBox/internal/services/parcels"
	"github.com/go-chi/chi/v5"
)

type ParcelsAPI struct {
	svc *parcels.Service
}

func New(svc *parcels.Service) *ParcelsAPI {
	return &ParcelsAPI{svc: svc}
}

type ParcelView struct {
	TrackingNumber string    `json:"trackingNumber"`
	Courier        string    `json:"courier"`
	Company        string    `json:"company"`
	Status         string    `json:"status"`
	ETA            *string   `json:"eta,omitempty"`
	LastUpdated    time.Time `json:"lastUpdated"`
	EmailSubject   *string   `json:"emailSubject,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type listResponse struct {
	Parcels []ParcelView `json:"parcels"`
	Total   int          `json:"total"`
}

func (a *ParcelsAPI) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", a.listParcels)
	r.Get("/{trackingNumber}", a.getParcel)
	r.Delete("/{trackingNumber}", a.deleteParcel)
	return r
}

func (a *ParcelsAPI) listParcels(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	ps, total, err := a.svc.ListParcels(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	out := listResponse{Parcels: make([]ParcelView, 0, len(ps)), Total: total}
	for _, p := range ps {
		out.Parcels = append(out.Parcels, toView(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *ParcelsAPI) getParcel(w http.ResponseWriter, r *http.Request) {
	p, err := a.svc.GetParcel(r.Context(), chi.URLParam(r, "trackingNumber"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "parcel not found"})
		return
	}
	writeJSON(w, http.StatusOK, toView(p))
}

func (a *ParcelsAPI) deleteParcel(w http.ResponseWriter, r *http.Request) {
	deleted, err := a.svc.DeleteParcel(r.Context(), chi.URLParam(r, "trackingNumber"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "parcel not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func toView(p *models.Parcel) ParcelView {
	return ParcelView{
		TrackingNumber: p.TrackingNumber,
		Courier:        p.Courier,
		Company:        p.Company,
		Status:         p.Status,
		ETA:            p.ETA,
		LastUpdated:    p.LastUpdated,
		EmailSubject:   p.EmailSubject,
		CreatedAt:      p.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
