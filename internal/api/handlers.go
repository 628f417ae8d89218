package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ignite/group-mailer/internal/groups"
	"github.com/ignite/group-mailer/internal/pkg/httputil"
	"github.com/ignite/group-mailer/internal/schedule"
)

// DirectoryService is the subscriber-directory surface the handlers consume.
type DirectoryService interface {
	Join(ctx context.Context, group, email string) error
	ListByGroup(ctx context.Context, group string) ([]groups.Subscriber, error)
}

// SchedulerService is the scheduling surface the handlers consume.
type SchedulerService interface {
	Schedule(ctx context.Context, group string, msg schedule.Message) (map[string]string, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	directory DirectoryService
	scheduler SchedulerService
}

// NewHandlers creates a new Handlers instance
func NewHandlers(directory DirectoryService, scheduler SchedulerService) *Handlers {
	return &Handlers{directory: directory, scheduler: scheduler}
}

// HealthCheck reports service liveness
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "ok"})
}

type joinRequest struct {
	Email string `json:"email"`
}

// JoinGroup adds a subscriber to the authorized group
func (h *Handlers) JoinGroup(w http.ResponseWriter, r *http.Request) {
	group, ok := GroupFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "missing group")
		return
	}

	var req joinRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	if err := h.directory.Join(r.Context(), group, req.Email); err != nil {
		if errors.Is(err, groups.ErrInvalidEmail) {
			httputil.BadRequest(w, "email not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, map[string]string{"message": fmt.Sprintf("%s added successfully", req.Email)})
}

// ListSubscribers returns every subscriber of the authorized group
func (h *Handlers) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	group, ok := GroupFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "missing group")
		return
	}

	subscribers, err := h.directory.ListByGroup(r.Context(), group)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if subscribers == nil {
		subscribers = []groups.Subscriber{}
	}

	httputil.OK(w, subscribers)
}

// ScheduleMessage files a message for future delivery to the authorized group
func (h *Handlers) ScheduleMessage(w http.ResponseWriter, r *http.Request) {
	group, ok := GroupFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "missing group")
		return
	}

	var msg schedule.Message
	if !httputil.Decode(w, r, &msg) {
		return
	}

	details, err := h.scheduler.Schedule(r.Context(), group, msg)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidMessage) {
			httputil.BadRequest(w, "missing message details")
			return
		}
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, map[string]any{
		"message": "Message scheduled successfully",
		"details": details,
	})
}
