package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/lost-found-api/access"
	"github.com/linesmerrill/lost-found-api/api"
	"github.com/linesmerrill/lost-found-api/reports"
)

// Report exported for testing purposes
type Report struct {
	Service *reports.Service
}

type reportStatusRequest struct {
	Status    string `json:"status"`
	AdminNote string `json:"adminNote"`
}

// CreateReportHandler files a report against a post
func (rp Report) CreateReportHandler(w http.ResponseWriter, r *http.Request) {
	var in reports.CreateReportInput
	if err := api.DecodeJSON(r, &in); err != nil {
		api.WriteError(w, "failed to decode request", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := rp.Service.Create(ctx, access.FromContext(r.Context()), in)
	if err != nil {
		api.WriteError(w, "failed to create report", err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, report)
}

// ReportsHandler returns a page of reports, admin only
func (rp Report) ReportsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := rp.Service.List(ctx, access.FromContext(r.Context()), reports.ReportQuery{
		Status: r.URL.Query().Get("status"),
		Page:   pageFromQuery(r),
	})
	if err != nil {
		api.WriteError(w, "failed to get reports", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}

// ReportByIDHandler returns a report by ID, admin only
func (rp Report) ReportByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := rp.Service.Get(ctx, access.FromContext(r.Context()), mux.Vars(r)["report_id"])
	if err != nil {
		api.WriteError(w, "failed to get report by ID", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, report)
}

// UpdateReportStatusHandler sets the report status and admin note
func (rp Report) UpdateReportStatusHandler(w http.ResponseWriter, r *http.Request) {
	var body reportStatusRequest
	if err := api.DecodeJSON(r, &body); err != nil {
		api.WriteError(w, "failed to decode request", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := rp.Service.UpdateStatus(ctx, access.FromContext(r.Context()), mux.Vars(r)["report_id"], body.Status, body.AdminNote)
	if err != nil {
		api.WriteError(w, "failed to update report status", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, report)
}

// DeleteReportHandler removes a report, admin only
func (rp Report) DeleteReportHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := rp.Service.Delete(ctx, access.FromContext(r.Context()), mux.Vars(r)["report_id"]); err != nil {
		api.WriteError(w, "failed to delete report", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
