package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ddsc-labs/community-backend/api/responses"
	"github.com/ddsc-labs/community-backend/api/validators"
	"github.com/ddsc-labs/community-backend/internal/waitlist"
	"github.com/ddsc-labs/community-backend/pkg/db/models"
	pkgerrors "github.com/ddsc-labs/community-backend/pkg/errors"
	"github.com/ddsc-labs/community-backend/pkg/logger"
)

type joinWaitlistPayload struct {
	Email     string `json:"email" validate:"required,email"`
	EventName string `json:"event_name" validate:"required,min=1,max=200"`
}

type waitlistEntryResponse struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	EventName  string     `json:"event_name"`
	Position   int        `json:"position"`
	Status     string     `json:"status"`
	JoinedAt   time.Time  `json:"joined_at"`
	PromotedAt *time.Time `json:"promoted_at,omitempty"`
	Notified   bool       `json:"notified"`
}

type waitlistStatusResponse struct {
	Count   int                     `json:"count"`
	Results []waitlistEntryResponse `json:"results"`
}

func toWaitlistEntryResponse(entry models.WaitlistEntry) waitlistEntryResponse {
	return waitlistEntryResponse{
		ID:         entry.ID,
		Email:      entry.Email,
		EventName:  entry.EventName,
		Position:   entry.Position,
		Status:     string(entry.Status),
		JoinedAt:   entry.JoinedAt,
		PromotedAt: entry.PromotedAt,
		Notified:   entry.Notified,
	}
}

// WaitlistJoin appends an email to the tail of an event's queue.
func WaitlistJoin(svc waitlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "waitlist service unavailable"))
			return
		}

		var payload joinWaitlistPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entry, err := svc.Join(ctx, payload.Email, payload.EventName)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toWaitlistEntryResponse(*entry))
	}
}

// WaitlistStatus lists every entry held by an email, optionally scoped to one event.
func WaitlistStatus(svc waitlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "waitlist service unavailable"))
			return
		}

		email := strings.TrimSpace(r.URL.Query().Get("email"))
		if email == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "email query parameter is required"))
			return
		}
		eventName := strings.TrimSpace(r.URL.Query().Get("event"))

		entries, err := svc.Status(ctx, email, eventName)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		results := make([]waitlistEntryResponse, 0, len(entries))
		for _, entry := range entries {
			results = append(results, toWaitlistEntryResponse(entry))
		}
		responses.WriteSuccess(w, waitlistStatusResponse{Count: len(results), Results: results})
	}
}

// WaitlistNext returns the head of the waiting queue for an event, or null.
func WaitlistNext(svc waitlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "waitlist service unavailable"))
			return
		}

		eventName := strings.TrimSpace(chi.URLParam(r, "eventName"))
		if eventName == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "event name is required"))
			return
		}

		entry, err := svc.NextInQueue(ctx, eventName)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if entry == nil {
			responses.WriteSuccess(w, nil)
			return
		}
		responses.WriteSuccess(w, toWaitlistEntryResponse(*entry))
	}
}

// WaitlistPromote moves an entry from waiting to promoted.
func WaitlistPromote(svc waitlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "waitlist service unavailable"))
			return
		}

		raw := strings.TrimSpace(chi.URLParam(r, "entryId"))
		entryID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entry id"))
			return
		}

		entry, err := svc.Promote(ctx, entryID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toWaitlistEntryResponse(*entry))
	}
}
