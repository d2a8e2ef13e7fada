package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/internal/validation"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/types"
)

// Banner is shown above the form when validation fails.
const Banner = "There were errors checking out. Please see fields below in red."

// Draft records that can be edited.
const (
	RecordProfile = "profile"
	RecordPayment = "payment"
)

type State string

const (
	StateEditing    State = "editing"
	StateValidating State = "validating"
	StateRejected   State = "rejected"
	StateCommitted  State = "committed"
)

type kvReader interface {
	Get(ctx context.Context, lifetime storage.Lifetime, key string) (string, bool, error)
}

type cartReader interface {
	Current() []cart.Line
}

type committer interface {
	Commit(ctx context.Context, profile types.ShopperProfile, lines []cart.Line) (*orders.Order, error)
}

type Options struct {
	Logger  *logger.Logger
	Metrics *metrics.Storefront
	// StrictValidation anchors the expiration and CVV patterns.
	StrictValidation bool
}

// Result is the outcome of one ValidateAndCommit call. Order is set only
// when State is StateCommitted.
type Result struct {
	State         State             `json:"state"`
	Banner        string            `json:"banner,omitempty"`
	ProfileErrors validation.Errors `json:"profile_errors"`
	PaymentErrors validation.Errors `json:"payment_errors"`
	Order         *orders.Order     `json:"order,omitempty"`
}

// Rejected reports whether validation failed.
func (r Result) Rejected() bool { return r.State == StateRejected }

// Snapshot is the orchestrator's view for rendering the checkout form.
type Snapshot struct {
	State         State                   `json:"state"`
	Profile       types.ShopperProfile    `json:"profile"`
	Payment       types.PaymentInstrument `json:"payment"`
	ProfileErrors validation.Errors       `json:"profile_errors,omitempty"`
	PaymentErrors validation.Errors       `json:"payment_errors,omitempty"`
}

// Orchestrator drives one checkout attempt from draft editing to a committed
// order. After commit it accepts no further edits.
type Orchestrator struct {
	mu            sync.Mutex
	cart          cartReader
	lifecycle     committer
	logg          *logger.Logger
	metrics       *metrics.Storefront
	profileSchema validation.Schema[types.ShopperProfile]
	paymentSchema validation.Schema[types.PaymentInstrument]

	state         State
	profile       types.ShopperProfile
	payment       types.PaymentInstrument
	profileErrors validation.Errors
	paymentErrors validation.Errors
	order         *orders.Order
	recovered     error
}

// New seeds the profile draft from the durable user record when it is
// complete JSON. The payment draft always starts empty.
func New(ctx context.Context, kv kvReader, cartStore cartReader, lifecycle committer, opts Options) *Orchestrator {
	o := &Orchestrator{
		cart:          cartStore,
		lifecycle:     lifecycle,
		logg:          opts.Logger,
		metrics:       opts.Metrics,
		profileSchema: validation.ProfileSchema(),
		paymentSchema: validation.PaymentSchema(opts.StrictValidation),
		state:         StateEditing,
	}
	if o.logg == nil {
		o.logg = logger.Nop()
	}

	raw, found, err := kv.Get(ctx, storage.Durable, storage.KeyUser)
	switch {
	case err != nil:
		o.recovered = err
	case !found:
	case !validation.LooksLikeProfile(raw):
		o.recovered = pkgerrors.New(pkgerrors.CodeMalformedState, "stored shopper profile is incomplete")
	default:
		var profile types.ShopperProfile
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			o.recovered = pkgerrors.Wrap(pkgerrors.CodeMalformedState, err, "stored shopper profile is not valid JSON")
			break
		}
		o.profile = profile
	}
	if pkgerrors.HasCode(o.recovered, pkgerrors.CodeMalformedState) {
		o.logg.Warn(o.logg.WithFields(ctx, pkgerrors.Dump(o.recovered).Fields()), "starting with an empty profile draft")
	}
	return o
}

// Recovered returns the diagnostic recorded while seeding the profile draft.
func (o *Orchestrator) Recovered() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.recovered
}

// State reports the current checkout state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SetDraftField sets one field of the profile or payment draft.
func (o *Orchestrator) SetDraftField(record, field, value string) error {
	return o.assign(record, field, &value)
}

// ClearDraftField marks a draft field as never entered.
func (o *Orchestrator) ClearDraftField(record, field string) error {
	return o.assign(record, field, nil)
}

func (o *Orchestrator) assign(record, field string, value *string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateCommitted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already committed")
	}

	switch record {
	case RecordProfile:
		f, ok := o.profileSchema.Field(field)
		if !ok {
			return unknownField(record, field)
		}
		f.Assign(&o.profile, value)
	case RecordPayment:
		f, ok := o.paymentSchema.Field(field)
		if !ok {
			return unknownField(record, field)
		}
		f.Assign(&o.payment, value)
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown record %q", record))
	}

	if o.state == StateRejected {
		o.state = StateEditing
	}
	return nil
}

func unknownField(record, field string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown %s field %q", record, field)).
		WithDetails(map[string]string{"record": record, "field": field})
}

// ValidateAndCommit validates both drafts. On failure the attempt is rejected
// with every field's message and nothing is written. On success the order is
// committed with a snapshot of the current cart.
func (o *Orchestrator) ValidateAndCommit(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateCommitted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already committed")
	}

	o.state = StateValidating
	o.profileErrors = o.profileSchema.Validate(o.profile)
	o.paymentErrors = o.paymentSchema.Validate(o.payment)

	if !o.profileErrors.Valid() || !o.paymentErrors.Valid() {
		o.state = StateRejected
		o.metrics.IncCheckoutAttempt("rejected")
		failed := append(o.profileErrors.Failed(), o.paymentErrors.Failed()...)
		o.logg.Info(o.logg.WithField(ctx, "fields", failed), "checkout rejected")
		return &Result{
			State:         StateRejected,
			Banner:        Banner,
			ProfileErrors: copyErrors(o.profileErrors),
			PaymentErrors: copyErrors(o.paymentErrors),
		}, nil
	}

	order, err := o.lifecycle.Commit(ctx, o.profile.Clone(), o.cart.Current())
	if err != nil {
		o.state = StateEditing
		o.metrics.IncCheckoutAttempt("failed")
		return nil, err
	}

	o.state = StateCommitted
	o.order = order
	o.metrics.IncCheckoutAttempt("committed")
	o.logg.Info(o.logg.WithOrderID(ctx, order.ID), "checkout committed")
	return &Result{
		State:         StateCommitted,
		ProfileErrors: copyErrors(o.profileErrors),
		PaymentErrors: copyErrors(o.paymentErrors),
		Order:         order,
	}, nil
}

// Snapshot returns the drafts with the card number and CVV masked.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	payment := o.payment.Clone()
	if payment.CardNumber != nil {
		payment.CardNumber = types.StringPtr(maskCardNumber(*payment.CardNumber))
	}
	if payment.CardCVV != nil {
		payment.CardCVV = types.StringPtr(strings.Repeat("*", len(*payment.CardCVV)))
	}
	return Snapshot{
		State:         o.state,
		Profile:       o.profile.Clone(),
		Payment:       payment,
		ProfileErrors: copyErrors(o.profileErrors),
		PaymentErrors: copyErrors(o.paymentErrors),
	}
}

// maskCardNumber hides every digit except the last four.
func maskCardNumber(number string) string {
	digits := 0
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	var b strings.Builder
	seen := 0
	for _, r := range number {
		if r >= '0' && r <= '9' {
			seen++
			if seen <= digits-4 {
				b.WriteRune('*')
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

func copyErrors(errs validation.Errors) validation.Errors {
	if errs == nil {
		return nil
	}
	out := make(validation.Errors, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}
