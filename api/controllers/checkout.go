package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/validation"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// CheckoutSession hands out the active orchestrator.
type CheckoutSession interface {
	Checkout() *checkout.Orchestrator
}

var draftLabels = map[string]map[string]string{
	checkout.RecordProfile: validation.ProfileLabels,
	checkout.RecordPayment: validation.PaymentLabels,
}

func CheckoutGet(sess CheckoutSession) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, sess.Checkout().Snapshot())
	}
}

// CheckoutSetDraft applies a partial update to one draft record. A null value
// clears the field. Unknown fields reject the whole update.
func CheckoutSetDraft(sess CheckoutSession, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record := chi.URLParam(r, "record")
		labels, ok := draftLabels[record]
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "unknown checkout record"))
			return
		}
		fields, err := validators.DecodeJSONFields(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unknown := map[string]string{}
		for name := range fields {
			if _, ok := labels[name]; !ok {
				unknown[name] = "is not a " + record + " field"
			}
		}
		if len(unknown) > 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown fields").WithDetails(unknown))
			return
		}

		orchestrator := sess.Checkout()
		for name, value := range fields {
			if value == nil {
				err = orchestrator.ClearDraftField(record, name)
			} else {
				err = orchestrator.SetDraftField(record, name, *value)
			}
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, orchestrator.Snapshot())
	}
}

// CheckoutSubmit validates the drafts and commits the order. A rejected
// attempt answers 400 with the banner and both field maps.
func CheckoutSubmit(sess CheckoutSession, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := sess.Checkout().ValidateAndCommit(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if result.Rejected() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, result.Banner).WithDetails(map[string]any{
				"profile": result.ProfileErrors,
				"payment": result.PaymentErrors,
			}))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(result.Order, nil))
	}
}
