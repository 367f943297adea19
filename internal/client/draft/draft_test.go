package draft

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cryptopay/internal/shared/models"
)

// fakeConverter converts at a fixed rate. Inputs registered with holdInput
// block until released, which lets tests control response ordering.
type fakeConverter struct {
	mu    sync.Mutex
	rate  float64
	hold  map[float64]chan struct{}
	calls []float64
	err   error
}

func newFakeConverter(rate float64) *fakeConverter {
	return &fakeConverter{rate: rate, hold: map[float64]chan struct{}{}}
}

func (f *fakeConverter) holdInput(v float64) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.hold[v] = ch
	return ch
}

func (f *fakeConverter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeConverter) wait(v float64) (float64, error) {
	f.mu.Lock()
	ch := f.hold[v]
	f.calls = append(f.calls, v)
	err := f.err
	f.mu.Unlock()
	if ch != nil {
		<-ch
	}
	return 0, err
}

func (f *fakeConverter) ConvertToCrypto(_ context.Context, usd float64, _ models.CurrencyCode) (float64, error) {
	if _, err := f.wait(usd); err != nil {
		return 0, err
	}
	return usd / f.rate, nil
}

func (f *fakeConverter) ConvertToUSD(_ context.Context, crypto float64, _ models.CurrencyCode) (float64, error) {
	if _, err := f.wait(crypto); err != nil {
		return 0, err
	}
	return crypto * f.rate, nil
}

func collectUpdates() (chan Draft, func(Draft)) {
	ch := make(chan Draft, 32)
	return ch, func(d Draft) { ch <- d }
}

func waitForCrypto(t *testing.T, updates chan Draft, want string) Draft {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case d := <-updates:
			if d.AmountCrypto == want {
				return d
			}
		case <-deadline:
			t.Fatalf("no update with amountCrypto=%q", want)
		}
	}
}

func TestEditFieldConverts(t *testing.T) {
	conv := newFakeConverter(50)
	updates, onUpdate := collectUpdates()
	c := New(conv, onUpdate, nil)

	c.EditField(context.Background(), FieldUSD, "100")
	c.Wait()

	d := c.Snapshot()
	if d.AmountUSD != "100" {
		t.Fatalf("amountUSD = %q, want raw echo 100", d.AmountUSD)
	}
	if d.AmountCrypto != "2" {
		t.Fatalf("amountCrypto = %q, want 2", d.AmountCrypto)
	}
	waitForCrypto(t, updates, "2")
}

func TestStaleConversionDiscarded(t *testing.T) {
	conv := newFakeConverter(50)
	updates, onUpdate := collectUpdates()
	c := New(conv, onUpdate, nil)

	release := conv.holdInput(100)
	c.EditField(context.Background(), FieldUSD, "100")
	c.EditField(context.Background(), FieldUSD, "200")

	// The newer edit lands first.
	waitForCrypto(t, updates, "4")

	// Now the older response resolves; it must be discarded.
	close(release)
	c.Wait()

	d := c.Snapshot()
	if d.AmountUSD != "200" || d.AmountCrypto != "4" {
		t.Fatalf("draft = %q/%q, want 200/4", d.AmountUSD, d.AmountCrypto)
	}
}

func TestCurrencySwitchInvalidatesInFlight(t *testing.T) {
	conv := newFakeConverter(50)
	c := New(conv, nil, nil)

	release := conv.holdInput(100)
	c.EditField(context.Background(), FieldUSD, "100")
	c.SetCurrency(models.CurrencyETH)
	close(release)
	c.Wait()

	d := c.Snapshot()
	if d.AmountCrypto != "" {
		t.Fatalf("amountCrypto = %q, want empty after currency switch", d.AmountCrypto)
	}
	if d.CurrencyCode != models.CurrencyETH {
		t.Fatalf("currency = %q, want ETH", d.CurrencyCode)
	}
}

func TestEditModeFreezesAmounts(t *testing.T) {
	conv := newFakeConverter(50)
	c := New(conv, nil, nil)
	c.Hydrate(models.PaymentPage{
		ID:    "page-1",
		Title: "Coffee",
		AmountDetails: models.AmountDetails{
			AmountUSD:    150,
			AmountCrypto: 3,
			Currency:     models.Currency{CurrencyCode: models.CurrencyBTC},
		},
	})

	c.EditField(context.Background(), FieldUSD, "999")
	c.SetCurrency(models.CurrencyETH)
	c.Wait()

	d := c.Snapshot()
	if d.AmountUSD != "150" || d.AmountCrypto != "3" {
		t.Fatalf("amounts changed in edit mode: %q/%q", d.AmountUSD, d.AmountCrypto)
	}
	if d.CurrencyCode != models.CurrencyBTC {
		t.Fatalf("currency changed in edit mode: %q", d.CurrencyCode)
	}
	if conv.callCount() != 0 {
		t.Fatalf("converter called %d times in edit mode", conv.callCount())
	}

	// Title and description stay editable.
	c.SetTitle("Tea")
	if got := c.Snapshot().Title; got != "Tea" {
		t.Fatalf("title = %q, want Tea", got)
	}
}

func TestUnparsableInputSkipsConversion(t *testing.T) {
	conv := newFakeConverter(50)
	c := New(conv, nil, nil)

	c.EditField(context.Background(), FieldUSD, ".")
	c.EditField(context.Background(), FieldCrypto, "")
	c.Wait()

	d := c.Snapshot()
	if d.AmountUSD != "." {
		t.Fatalf("amountUSD = %q, want verbatim echo", d.AmountUSD)
	}
	if conv.callCount() != 0 {
		t.Fatalf("converter called %d times for unparsable input", conv.callCount())
	}
}

func TestTrailingDotStillConverts(t *testing.T) {
	conv := newFakeConverter(50)
	c := New(conv, nil, nil)

	// "100." parses as 100; any parsable non-empty value converts.
	c.EditField(context.Background(), FieldUSD, "100.")
	c.Wait()

	d := c.Snapshot()
	if d.AmountUSD != "100." {
		t.Fatalf("amountUSD = %q, want verbatim echo", d.AmountUSD)
	}
	if d.AmountCrypto != "2" {
		t.Fatalf("amountCrypto = %q, want 2", d.AmountCrypto)
	}
}

func TestConversionErrorKeepsFields(t *testing.T) {
	conv := newFakeConverter(50)
	conv.err = errors.New("gateway down")
	errs := make(chan error, 1)
	c := New(conv, nil, func(err error) { errs <- err })

	c.EditField(context.Background(), FieldUSD, "100")
	c.Wait()

	select {
	case err := <-errs:
		var cerr *ConversionError
		if !errors.As(err, &cerr) {
			t.Fatalf("error type %T", err)
		}
		if cerr.Edited != FieldUSD {
			t.Fatalf("edited field = %v", cerr.Edited)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no error callback")
	}

	d := c.Snapshot()
	if d.AmountUSD != "100" || d.AmountCrypto != "" {
		t.Fatalf("draft = %q/%q, want 100/empty", d.AmountUSD, d.AmountCrypto)
	}
}

func TestCloseDiscardsPending(t *testing.T) {
	conv := newFakeConverter(50)
	var mu sync.Mutex
	var updatesAfterClose int
	closed := false
	c := New(conv, func(Draft) {
		mu.Lock()
		if closed {
			updatesAfterClose++
		}
		mu.Unlock()
	}, func(error) {
		t.Error("error callback after close")
	})

	release := conv.holdInput(100)
	c.EditField(context.Background(), FieldUSD, "100")

	mu.Lock()
	closed = true
	mu.Unlock()
	c.Close()
	close(release)
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	if updatesAfterClose != 0 {
		t.Fatalf("%d updates after Close", updatesAfterClose)
	}
}

func TestCloseWaitsForCallbackDelivery(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	c := New(newFakeConverter(50), func(Draft) {
		entered <- struct{}{}
		<-release
	}, nil)

	go c.SetTitle("first")
	<-entered

	closeDone := make(chan struct{})
	go func() {
		c.Close()
		close(closeDone)
	}()
	select {
	case <-closeDone:
		t.Fatal("Close returned while a callback was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-closeDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Close never returned")
	}

	// Later mutations deliver nothing once Close has returned.
	c.SetTitle("second")
	select {
	case <-entered:
		t.Fatal("callback fired after Close")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name      string
		d         Draft
		wantField string
	}{
		{"valid", Draft{Title: "t", Description: "d", AmountUSD: "100", AmountCrypto: "0.001", CurrencyCode: models.CurrencyBTC}, ""},
		{"missing title", Draft{Description: "d", AmountUSD: "100", AmountCrypto: "0.001", CurrencyCode: models.CurrencyBTC}, "title"},
		{"missing description", Draft{Title: "t", AmountUSD: "100", AmountCrypto: "0.001", CurrencyCode: models.CurrencyBTC}, "description"},
		{"bad currency", Draft{Title: "t", Description: "d", AmountUSD: "100", AmountCrypto: "0.001", CurrencyCode: "DOGE"}, "currencyCode"},
		{"usd below floor", Draft{Title: "t", Description: "d", AmountUSD: "99.99", AmountCrypto: "0.001", CurrencyCode: models.CurrencyBTC}, "amountUSD"},
		{"usd not a number", Draft{Title: "t", Description: "d", AmountUSD: "abc", AmountCrypto: "0.001", CurrencyCode: models.CurrencyBTC}, "amountUSD"},
		{"crypto below floor", Draft{Title: "t", Description: "d", AmountUSD: "100", AmountCrypto: "0.0009", CurrencyCode: models.CurrencyBTC}, "amountCrypto"},
		{"crypto empty", Draft{Title: "t", Description: "d", AmountUSD: "100", AmountCrypto: "", CurrencyCode: models.CurrencyBTC}, "amountCrypto"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New(nil, nil, nil)
			c.d = tc.d
			err := c.Validate()
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type %T", err)
			}
			if verr.Field != tc.wantField {
				t.Fatalf("field = %q, want %q", verr.Field, tc.wantField)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(0.00153846); got != "0.00153846" {
		t.Fatalf("FormatAmount = %q", got)
	}
	if got := FormatAmount(100); got != "100" {
		t.Fatalf("FormatAmount = %q", got)
	}
}
