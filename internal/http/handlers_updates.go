package http

import (
	"errors"
	"net/http"
	"time"

	"agency/internal/core"
	"agency/internal/normalize"
)

type (
	projectStatusRequest struct {
		Status       core.ProjectStatus `json:"status"`
		DeliveryDate any                `json:"deliveryDate"`
	}
	activityCompletedRequest struct {
		Completed *bool `json:"completed"`
	}
	budgetStatusRequest struct {
		Status core.BudgetStatus `json:"status"`
	}
	receiptStatusRequest struct {
		Status core.ReceiptStatus `json:"status"`
	}
)

func (req activityCompletedRequest) validate() error {
	if req.Completed == nil {
		return errors.New("missing completed flag")
	}
	return nil
}

// patch decodes the body into req and runs apply for the {id} record.
func patch[Req any](w http.ResponseWriter, r *http.Request, apply func(id string, req Req) error) {
	id := pathID(r)
	if id == "" {
		badRequest(w, r, "missing id")
		return
	}
	var req Req
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if v, ok := any(req).(interface{ validate() error }); ok {
		if err := v.validate(); err != nil {
			badRequest(w, r, err.Error())
			return
		}
	}
	if err := apply(id, req); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleProjectStatus(w http.ResponseWriter, r *http.Request) {
	patch(w, r, func(id string, req projectStatusRequest) error {
		ts, err := normalize.OptionalTimestamp(req.DeliveryDate)
		if err != nil {
			return err
		}
		var delivery *time.Time
		if ts != nil {
			t := ts.Time()
			delivery = &t
		}
		return s.gateway.UpdateProjectStatus(r.Context(), sessionFrom(r.Context()), id, req.Status, delivery)
	})
}

func (s *Server) handleActivityCompleted(w http.ResponseWriter, r *http.Request) {
	patch(w, r, func(id string, req activityCompletedRequest) error {
		return s.gateway.SetActivityCompleted(r.Context(), sessionFrom(r.Context()), id, *req.Completed)
	})
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	patch(w, r, func(id string, req budgetStatusRequest) error {
		return s.gateway.UpdateBudgetStatus(r.Context(), sessionFrom(r.Context()), id, req.Status)
	})
}

func (s *Server) handleBudgetPatch(w http.ResponseWriter, r *http.Request) {
	patch(w, r, func(id string, req core.BudgetPatch) error {
		return s.gateway.UpdateBudget(r.Context(), sessionFrom(r.Context()), id, req)
	})
}

func (s *Server) handleReceiptStatus(w http.ResponseWriter, r *http.Request) {
	patch(w, r, func(id string, req receiptStatusRequest) error {
		return s.gateway.UpdateReceiptStatus(r.Context(), sessionFrom(r.Context()), id, req.Status)
	})
}

func (s *Server) handleReceiptPatch(w http.ResponseWriter, r *http.Request) {
	patch(w, r, func(id string, req core.ReceiptPatch) error {
		return s.gateway.UpdateReceipt(r.Context(), sessionFrom(r.Context()), id, req)
	})
}
