// Package draft owns the payment-page draft being created or edited and keeps
// its USD and crypto amounts consistent under single-field edits. Conversions
// run asynchronously against the gateway; a generation counter guarantees that
// only the response belonging to the most recent edit may touch the draft
// (last edit wins, stale responses are discarded).
package draft

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"cryptopay/internal/shared/models"
)

// Field identifies one of the two amount inputs.
type Field int

const (
	FieldUSD Field = iota
	FieldCrypto
)

func (f Field) String() string {
	if f == FieldUSD {
		return "amountUSD"
	}
	return "amountCrypto"
}

// Converter performs server-side currency conversion. *api.Client satisfies it.
type Converter interface {
	ConvertToUSD(ctx context.Context, cryptoAmount float64, code models.CurrencyCode) (float64, error)
	ConvertToCrypto(ctx context.Context, usdAmount float64, code models.CurrencyCode) (float64, error)
}

// Draft holds the form state. Amounts stay raw strings so the field the user
// is typing in is echoed verbatim and never clobbered mid-keystroke.
type Draft struct {
	PageID       string
	Title        string
	Description  string
	AmountUSD    string
	AmountCrypto string
	CurrencyCode models.CurrencyCode
}

// EditMode reports whether the draft describes an already-created page, in
// which case amounts and currency are fixed (the gateway owns them).
func (d Draft) EditMode() bool {
	return d.PageID != "" && d.PageID != "new"
}

// ValidationError blocks submission with a field-specific message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConversionError is non-fatal: both amount fields keep their last values.
type ConversionError struct {
	Edited Field
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Edited == FieldUSD {
		return fmt.Sprintf("failed to convert USD to crypto: %v", e.Err)
	}
	return fmt.Sprintf("failed to convert crypto to USD: %v", e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Controller mediates user edits against asynchronous conversion responses.
// All state is owned by the controller; callbacks receive value snapshots.
type Controller struct {
	mu     sync.Mutex
	conv   Converter
	d      Draft
	gen    uint64
	closed bool
	wg     sync.WaitGroup

	// deliverMu serializes callback delivery against Close, so no callback
	// outlives Close. Callbacks must not call back into the Controller.
	deliverMu sync.Mutex
	onUpdate  func(Draft)
	onError   func(error)
}

// New returns a create-mode controller with currency defaulted to BTC.
// Either callback may be nil.
func New(conv Converter, onUpdate func(Draft), onError func(error)) *Controller {
	return &Controller{
		conv:     conv,
		d:        Draft{CurrencyCode: models.CurrencyBTC},
		onUpdate: onUpdate,
		onError:  onError,
	}
}

// Hydrate loads an existing page into the draft, switching to edit mode.
func (c *Controller) Hydrate(page models.PaymentPage) {
	c.mu.Lock()
	c.d = Draft{
		PageID:       page.ID,
		Title:        page.Title,
		Description:  page.Description,
		AmountUSD:    FormatAmount(page.AmountDetails.AmountUSD),
		AmountCrypto: FormatAmount(page.AmountDetails.AmountCrypto),
		CurrencyCode: page.AmountDetails.Currency.CurrencyCode,
	}
	c.gen++
	snap := c.d
	c.mu.Unlock()
	c.notify(snap)
}

func (c *Controller) SetTitle(title string) {
	c.mu.Lock()
	c.d.Title = title
	snap := c.d
	c.mu.Unlock()
	c.notify(snap)
}

func (c *Controller) SetDescription(desc string) {
	c.mu.Lock()
	c.d.Description = desc
	snap := c.d
	c.mu.Unlock()
	c.notify(snap)
}

// EditField writes the raw value into the edited field immediately, then
// requests a conversion for the other field. In edit mode this is a no-op and
// no conversion is ever issued.
func (c *Controller) EditField(ctx context.Context, f Field, raw string) {
	c.mu.Lock()
	if c.closed || c.d.EditMode() {
		c.mu.Unlock()
		return
	}
	switch f {
	case FieldUSD:
		c.d.AmountUSD = raw
	case FieldCrypto:
		c.d.AmountCrypto = raw
	}
	c.gen++
	gen := c.gen
	code := c.d.CurrencyCode
	snap := c.d
	c.mu.Unlock()
	c.notify(snap)

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return
	}
	amount, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		// Not a number; submit validation reports it.
		return
	}
	c.wg.Add(1)
	go c.convert(ctx, f, amount, code, gen)
}

// SetCurrency switches the conversion table. Any in-flight conversion was
// computed under the old currency and must never land, so the generation
// advances here too. No-op in edit mode.
func (c *Controller) SetCurrency(code models.CurrencyCode) {
	c.mu.Lock()
	if c.closed || c.d.EditMode() {
		c.mu.Unlock()
		return
	}
	c.d.CurrencyCode = code
	c.gen++
	snap := c.d
	c.mu.Unlock()
	c.notify(snap)
}

func (c *Controller) convert(ctx context.Context, edited Field, amount float64, code models.CurrencyCode, gen uint64) {
	defer c.wg.Done()
	var converted float64
	var err error
	switch edited {
	case FieldUSD:
		converted, err = c.conv.ConvertToCrypto(ctx, amount, code)
	case FieldCrypto:
		converted, err = c.conv.ConvertToUSD(ctx, amount, code)
	}

	c.mu.Lock()
	if c.closed || gen != c.gen {
		// A newer edit or a currency switch superseded this request.
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.mu.Unlock()
		c.fail(&ConversionError{Edited: edited, Err: err})
		return
	}
	switch edited {
	case FieldUSD:
		c.d.AmountCrypto = FormatAmount(converted)
	case FieldCrypto:
		c.d.AmountUSD = FormatAmount(converted)
	}
	snap := c.d
	c.mu.Unlock()
	c.notify(snap)
}

// Snapshot returns a copy of the current draft.
func (c *Controller) Snapshot() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.d
}

// Wait blocks until every issued conversion has resolved or been discarded.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close is the teardown guard: after it returns no pending conversion mutates
// the draft and no callback fires. A delivery already in progress is allowed
// to finish before Close returns.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.gen++
	c.mu.Unlock()

	c.deliverMu.Lock()
	c.deliverMu.Unlock()
}

// Validate checks the draft at submit time. A nil result means the submit may
// proceed; otherwise the returned *ValidationError names the offending field
// and no persistence call must be made.
func (c *Controller) Validate() error {
	d := c.Snapshot()
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Message: "Title is required."}
	}
	if strings.TrimSpace(d.Description) == "" {
		return &ValidationError{Field: "description", Message: "Description is required."}
	}
	if !d.CurrencyCode.Valid() {
		return &ValidationError{Field: "currencyCode", Message: "Currency must be BTC or ETH."}
	}
	usd, err := strconv.ParseFloat(strings.TrimSpace(d.AmountUSD), 64)
	if err != nil {
		return &ValidationError{Field: "amountUSD", Message: "Amount USD must be a number."}
	}
	if usd < 100 {
		return &ValidationError{Field: "amountUSD", Message: "Amount USD must be at least 100."}
	}
	crypto, err := strconv.ParseFloat(strings.TrimSpace(d.AmountCrypto), 64)
	if err != nil {
		return &ValidationError{Field: "amountCrypto", Message: "Amount Crypto must be a number."}
	}
	if crypto < 0.001 {
		return &ValidationError{Field: "amountCrypto", Message: "Amount Crypto must be at least 0.001."}
	}
	return nil
}

// Amounts parses both amount fields. Call after Validate.
func (c *Controller) Amounts() (usd, crypto float64, err error) {
	d := c.Snapshot()
	usd, err = strconv.ParseFloat(strings.TrimSpace(d.AmountUSD), 64)
	if err != nil {
		return 0, 0, err
	}
	crypto, err = strconv.ParseFloat(strings.TrimSpace(d.AmountCrypto), 64)
	if err != nil {
		return 0, 0, err
	}
	return usd, crypto, nil
}

func (c *Controller) notify(d Draft) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed || c.onUpdate == nil {
		return
	}
	c.onUpdate(d)
}

func (c *Controller) fail(err error) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed || c.onError == nil {
		return
	}
	c.onError(err)
}

// FormatAmount renders a converted amount without trailing zeros.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
