package http

import (
	"context"
	"net/http"
	"sync/atomic"

	"agency/internal/auth"
	"agency/internal/core"
)

// CreatedBody answers a successful create.
type CreatedBody struct {
	ID string `json:"id"`
}

func createHandler[In any](s *Server, create func(context.Context, *auth.Session, In) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := decodeJSON(w, r, &in); err != nil {
			badRequest(w, r, err.Error())
			return
		}
		s.create(w, r, func(ctx context.Context, sess *auth.Session) (string, error) {
			return create(ctx, sess, in)
		})
	}
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, create func(context.Context, *auth.Session) (string, error)) {
	id, err := create(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	atomic.AddInt64(&s.recordsCreated, 1)
	NewJSONResponse().
		Status(http.StatusCreated).
		Data(CreatedBody{ID: id}).
		Write(w)
}

// listHandler answers with the records as a JSON array. Lists soft-fail in
// the gateway, so errors here are cancellations.
func listHandler[T any](_ *Server, list func(context.Context, *auth.Session) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context(), sessionFrom(r.Context()))
		if err != nil {
			writeError(w, r, err)
			return
		}
		NewJSONResponse().Data(items).Write(w)
	}
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	projectID := pathID(r)
	if projectID == "" {
		badRequest(w, r, "missing project id")
		return
	}
	var in core.ProjectActivityInput
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	in.ProjectID = projectID
	s.create(w, r, func(ctx context.Context, sess *auth.Session) (string, error) {
		return s.gateway.CreateProjectActivity(ctx, sess, in)
	})
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	projectID := pathID(r)
	if projectID == "" {
		badRequest(w, r, "missing project id")
		return
	}
	listHandler(s, func(ctx context.Context, sess *auth.Session) ([]core.ProjectActivity, error) {
		return s.gateway.ListProjectActivities(ctx, sess, projectID)
	})(w, r)
}
