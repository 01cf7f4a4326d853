package handler

import (
	"net/http"

	"github.com/rehearsal/attendance/internal/middleware"
	"github.com/rehearsal/attendance/internal/model"
	"github.com/rehearsal/attendance/internal/service"
)

// AttendanceHandler handles check-in HTTP requests
type AttendanceHandler struct {
	svc *service.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{svc: svc}
}

// IssueTicket handles POST /v1/workshops/{workshopId}/ticket
//
// Any authenticated user can request a ticket for any workshop; the
// gatekeeping happens at scan time.
func (h *AttendanceHandler) IssueTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}
	workshopID := r.PathValue("workshopId")

	resp, err := h.svc.IssueTicket(ctx, workshopID, userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, resp)
}

// Scan handles POST /v1/workshops/{workshopId}/scan
//
// The caller must be able to operate the workshop, either through
// their session or a station token carried in the request body. The
// three scan outcomes are all 200s; problems with the ticket itself
// come back as 422 with a machine-readable reason.
func (h *AttendanceHandler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	workshopID := r.PathValue("workshopId")

	var req model.ScanRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	resp, err := h.svc.Scan(ctx, workshopID, actorID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, resp)
}

// IssueStationToken handles POST /v1/workshops/{workshopId}/station-token
func (h *AttendanceHandler) IssueStationToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}
	workshopID := r.PathValue("workshopId")

	resp, err := h.svc.IssueStationToken(ctx, workshopID, actorID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, resp)
}

// Join handles POST /v1/workshops/{workshopId}/join
func (h *AttendanceHandler) Join(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}
	workshopID := r.PathValue("workshopId")

	resp, err := h.svc.Join(ctx, workshopID, userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, resp)
}

// Roster handles GET /v1/workshops/{workshopId}/attendance
func (h *AttendanceHandler) Roster(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}
	workshopID := r.PathValue("workshopId")

	resp, err := h.svc.Roster(ctx, workshopID, actorID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, resp)
}
