package handler

import (
	"net/http"

	"chatform/internal/model"
	"chatform/internal/service"
)

// SubmissionHandler exposes stored submissions to hosts
type SubmissionHandler struct {
	submissionSvc *service.SubmissionService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionSvc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc}
}

// List handles GET /v1/submissions
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.submissionSvc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list submissions")
		return
	}
	if subs == nil {
		subs = []*model.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}
