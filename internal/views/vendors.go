// Package views holds the console's page models: the state a page renders
// and the transitions administrator actions drive it through.
package views

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/vinmart/admin-console/internal/apiclient"
	"github.com/vinmart/admin-console/internal/events"
	"github.com/vinmart/admin-console/internal/session"
)

const (
	msgFetchVendorsFailed = "Failed to fetch vendors"
	msgCreateVendorFailed = "Failed to create vendor"
	msgDuplicateVendor    = "A vendor with this email already exists."
	msgVendorCreated      = "Vendor created successfully!"
	msgDeleteVendorFailed = "Failed to delete vendor."
)

// ListState is the lifecycle of a page's record list.
type ListState int

const (
	ListLoading ListState = iota
	ListLoaded
	ListLoadError
)

// DialogState is the lifecycle of the create dialog.
type DialogState int

const (
	DialogClosed DialogState = iota
	DialogOpen
	DialogSubmitting
)

// DeleteOutcome tells the caller what a delete request amounted to.
type DeleteOutcome int

const (
	// DeleteCancelled means the administrator declined; no request was made.
	DeleteCancelled DeleteOutcome = iota
	// DeleteBusy means a delete for the same record is already in flight.
	DeleteBusy
	DeleteSucceeded
	DeleteFailed
)

// VendorAPI is the slice of the API client the vendor page needs.
type VendorAPI interface {
	List(ctx context.Context) ([]apiclient.Vendor, error)
	Create(ctx context.Context, v apiclient.NewVendor) (json.RawMessage, error)
	Delete(ctx context.Context, id string) (json.RawMessage, error)
}

// VendorForm is the create dialog's form.
type VendorForm struct {
	Name     string   `form:"name" validate:"required,max=120"`
	Email    string   `form:"email" validate:"required,email"`
	Password string   `form:"password" validate:"required"`
	Category []string `form:"category" validate:"dive,vendor_category"`
}

// HasCategory reports whether label is selected.
func (f VendorForm) HasCategory(label string) bool {
	for _, c := range f.Category {
		if c == label {
			return true
		}
	}
	return false
}

// VendorPage is everything the vendor management page renders.
type VendorPage struct {
	List      ListState
	Vendors   []apiclient.Vendor
	LoadError string

	Dialog    DialogState
	Form      VendorForm
	FormError *FormError
	Success   string

	// Pending holds vendor ids whose delete control is disabled.
	Pending map[string]bool
	Alert   string
}

// NewVendorPage returns a page in its initial state.
func NewVendorPage() *VendorPage {
	return &VendorPage{List: ListLoading, Dialog: DialogClosed, Pending: map[string]bool{}}
}

// OpenDialog shows an empty create form.
func (p *VendorPage) OpenDialog() {
	p.Dialog = DialogOpen
	p.FormError = nil
	p.Success = ""
}

// CloseDialog hides the create form without submitting.
func (p *VendorPage) CloseDialog() {
	p.Dialog = DialogClosed
}

// Submitting reports whether the submit control must be disabled.
func (p *VendorPage) Submitting() bool {
	return p.Dialog == DialogSubmitting
}

// VendorService drives VendorPage transitions against the API.
type VendorService struct {
	api        VendorAPI
	validator  *FormValidator
	deleting   *InFlight
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewVendorService wires the vendor page to the API.
func NewVendorService(api VendorAPI, validator *FormValidator, dispatcher events.Dispatcher, logger *zap.Logger) *VendorService {
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VendorService{
		api:        api,
		validator:  validator,
		deleting:   NewInFlight(),
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Load fetches the vendor list into p. The returned error is the raw call
// failure, so callers can hand authorization failures to the session
// observer; p already carries the message to show.
func (s *VendorService) Load(ctx context.Context, p *VendorPage) error {
	p.List = ListLoading
	p.LoadError = ""

	vendors, err := s.api.List(ctx)
	p.Pending = s.deleting.Snapshot()
	if err != nil {
		p.List = ListLoadError
		p.LoadError = apiclient.MessageOr(err, msgFetchVendorsFailed)
		return err
	}
	p.Vendors = vendors
	p.List = ListLoaded
	return nil
}

// Submit posts form from the open dialog. On success the form is cleared and
// the dialog closed; the caller then re-fetches the list once. On failure the
// dialog stays open with the error attached to the email field for
// duplicates, or to the whole form otherwise.
func (s *VendorService) Submit(ctx context.Context, p *VendorPage, form VendorForm) error {
	p.Form = normaliseVendorForm(form)
	p.FormError = nil
	p.Success = ""

	if ferr := s.validator.Validate(p.Form); ferr != nil {
		p.Dialog = DialogOpen
		p.FormError = ferr
		return nil
	}

	p.Dialog = DialogSubmitting
	_, err := s.api.Create(ctx, apiclient.NewVendor{
		Name:     p.Form.Name,
		Email:    p.Form.Email,
		Password: p.Form.Password,
		Category: p.Form.Category,
	})
	if err != nil {
		p.Dialog = DialogOpen
		p.Form.Password = ""
		if apiclient.IsDuplicate(err) {
			p.FormError = &FormError{Field: "email", Message: msgDuplicateVendor}
		} else {
			p.FormError = &FormError{Field: FieldGeneral, Message: apiclient.MessageOr(err, msgCreateVendorFailed)}
		}
		return err
	}

	s.publish(ctx, events.New(events.EventVendorCreated, sessionID(ctx), "", events.VendorCreatedPayload{
		Email:      p.Form.Email,
		Categories: p.Form.Category,
	}))

	p.Form = VendorForm{}
	p.Dialog = DialogClosed
	p.Success = msgVendorCreated
	return nil
}

// Delete removes vendor id once the administrator confirmed. While the call
// is in flight only that vendor is marked pending; the mark is released
// whether the call succeeds or fails.
func (s *VendorService) Delete(ctx context.Context, id string, confirmed bool) (DeleteOutcome, error) {
	if !confirmed {
		return DeleteCancelled, nil
	}
	if !s.deleting.Begin(id) {
		return DeleteBusy, nil
	}
	defer s.deleting.End(id)

	if _, err := s.api.Delete(ctx, id); err != nil {
		s.logger.Warn("vendor delete failed", zap.String("vendor_id", id), zap.Error(err))
		return DeleteFailed, err
	}
	s.publish(ctx, events.New(events.EventVendorDeleted, sessionID(ctx), id, nil))
	return DeleteSucceeded, nil
}

// Deleting reports whether a delete for id is in flight.
func (s *VendorService) Deleting(id string) bool {
	return s.deleting.Has(id)
}

// DeleteFailedMessage is the blocking alert shown after a failed delete.
func DeleteFailedMessage() string {
	return msgDeleteVendorFailed
}

// CreatedMessage is the notice shown after a successful create.
func CreatedMessage() string {
	return msgVendorCreated
}

func (s *VendorService) publish(ctx context.Context, e events.Event) {
	if err := s.dispatcher.Publish(ctx, e); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event", string(e.Type)), zap.Error(err))
	}
}

func normaliseVendorForm(f VendorForm) VendorForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	seen := make(map[string]struct{}, len(f.Category))
	cats := make([]string, 0, len(f.Category))
	for _, c := range f.Category {
		if _, dup := seen[c]; dup || c == "" {
			continue
		}
		seen[c] = struct{}{}
		cats = append(cats, c)
	}
	f.Category = cats
	return f
}

func sessionID(ctx context.Context) string {
	sess, _ := session.FromContext(ctx)
	return sess.ID()
}
