package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/example/creatorstore/pkg/cart"
	"github.com/example/creatorstore/pkg/catalog"
	"github.com/example/creatorstore/pkg/checkout"
	"github.com/example/creatorstore/pkg/config"
	"github.com/example/creatorstore/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const catalogFixture = `{
	"products": [
		{"id": 1, "name": "Ring Light", "price": 1299, "images": ["rl.jpg"], "stock": 12},
		{"id": 2, "name": "Lav Mic", "price": 499, "images": ["lm.jpg"], "stock": 30}
	],
	"kits": []
}`

var rules = config.ShippingConfig{
	CODFee:           50,
	CODFreeThreshold: 1500,
	OnlineFee:        80,
}

type memStorage struct {
	items []models.CartItem
}

func (m *memStorage) Load(ctx context.Context) ([]models.CartItem, error) {
	return m.items, nil
}

func (m *memStorage) Save(ctx context.Context, items []models.CartItem) error {
	m.items = append([]models.CartItem(nil), items...)
	return nil
}

type fakeDispatcher struct {
	records []*models.OrderRecord
}

func (f *fakeDispatcher) Dispatch(record *models.OrderRecord) {
	f.records = append(f.records, record)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read interrupted")
}

func validForm() checkout.Form {
	return checkout.Form{
		Name:          "Asha Rao",
		Phone:         "9876543210",
		Email:         "asha@example.com",
		Address:       "12 MG Road, Bengaluru",
		PaymentMethod: models.PaymentCOD,
	}
}

func newFixture(t *testing.T) (*cart.Store, *memStorage, *fakeDispatcher, *checkout.Flow) {
	t.Helper()
	cat := catalog.NewStore()
	require.NoError(t, cat.LoadBytes([]byte(catalogFixture)))

	storage := &memStorage{}
	ct := cart.NewStore(context.Background(), cat, storage)
	dispatcher := &fakeDispatcher{}
	flow := checkout.NewFlow(ct, rules, dispatcher, zap.NewNop())
	return ct, storage, dispatcher, flow
}

func TestStateTransitions(t *testing.T) {
	ctx := context.Background()
	ct, _, _, flow := newFixture(t)

	assert.Equal(t, checkout.StateBrowsing, flow.State())

	flow.ViewProduct()
	assert.Equal(t, checkout.StateProductDetail, flow.State())

	flow.ViewCart()
	assert.Equal(t, checkout.StateCart, flow.State())

	require.NoError(t, ct.Add(ctx, catalog.ProductRef(1), 1))
	require.NoError(t, flow.BeginCheckout())
	assert.Equal(t, checkout.StateCheckout, flow.State())

	flow.ContinueShopping()
	assert.Equal(t, checkout.StateBrowsing, flow.State())
}

func TestBeginCheckoutWithEmptyCart(t *testing.T) {
	_, _, _, flow := newFixture(t)

	assert.ErrorIs(t, flow.BeginCheckout(), checkout.ErrEmptyCart)
	assert.Equal(t, checkout.StateBrowsing, flow.State())
}

func TestSubmitMissingFields(t *testing.T) {
	ctx := context.Background()
	ct, _, dispatcher, flow := newFixture(t)
	require.NoError(t, ct.Add(ctx, catalog.ProductRef(1), 1))
	require.NoError(t, flow.BeginCheckout())

	form := validForm()
	form.Phone = ""
	form.Address = "  "

	record, err := flow.Submit(ctx, form)
	assert.Nil(t, record)

	var verr *checkout.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"phone", "address"}, verr.Fields)

	// Nothing dispatched, cart untouched, still in checkout
	assert.Empty(t, dispatcher.records)
	assert.Equal(t, 1, ct.Len())
	assert.Equal(t, checkout.StateCheckout, flow.State())
}

func TestSubmitOnlineWithoutProof(t *testing.T) {
	ctx := context.Background()
	ct, _, dispatcher, flow := newFixture(t)
	require.NoError(t, ct.Add(ctx, catalog.ProductRef(1), 1))
	require.NoError(t, flow.BeginCheckout())

	form := validForm()
	form.PaymentMethod = models.PaymentOnline

	record, err := flow.Submit(ctx, form)
	assert.Nil(t, record)

	var verr *checkout.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"paymentScreenshot", "utrNumber"}, verr.Fields)
	assert.Empty(t, dispatcher.records)
	assert.Equal(t, 1, ct.Len())
}

func TestSubmitCODOrder(t *testing.T) {
	ctx := context.Background()
	ct, storage, dispatcher, flow := newFixture(t)
	require.NoError(t, ct.Add(ctx, catalog.ProductRef(1), 1))
	require.NoError(t, flow.BeginCheckout())

	record, err := flow.Submit(ctx, validForm())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(record.OrderID, "ORD"))
	assert.Equal(t, models.PaymentCOD, record.PaymentMethod)
	assert.Equal(t, 1299, record.Subtotal)
	assert.Equal(t, 50, record.Shipping)
	assert.Equal(t, 1349, record.Total)
	require.Len(t, record.Items, 1)
	assert.Equal(t, "Ring Light", record.Items[0].Name)
	assert.Equal(t, "Asha Rao", record.Customer.Name)

	require.Len(t, dispatcher.records, 1)
	assert.Same(t, record, dispatcher.records[0])

	// Cart cleared and the empty state persisted
	assert.Equal(t, 0, ct.Count())
	assert.Empty(t, storage.items)
	assert.Equal(t, checkout.StateSuccess, flow.State())
}

func TestSubmitOrderIDMatchesDate(t *testing.T) {
	ctx := context.Background()
	ct, _, _, flow := newFixture(t)
	require.NoError(t, ct.Add(ctx, catalog.ProductRef(1), 1))
	require.NoError(t, flow.BeginCheckout())

	// A clock that ticks between reads must not split the id from the date
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	calls := 0
	flow.SetClock(func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Millisecond)
	})

	record, err := flow.Submit(ctx, validForm())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("ORD%d", record.Date.UnixMilli()), record.OrderID)
}

func TestSubmitFreeShippingAboveThreshold(t *testing.T) {
	ctx := context.Background()
	ct, _, _, flow := newFixture(t)
	require.NoError(t, ct.Add(ctx, catalog.ProductRef(1), 1))
	require.NoError(t, ct.Add(ctx, catalog.ProductRef(2), 1))
	require.NoError(t, flow.BeginCheckout())

	record, err := flow.Submit(ctx, validForm())
	require.NoError(t, err)
	assert.Equal(t, 1798, record.Subtotal)
	assert.Equal(t, 0, record.Shipping)
	assert.Equal(t, 1798, record.Total)
}

func TestSubmitOnlineOrderReadsAttachment(t *testing.T) {
	ctx := context.Background()
	ct, _, dispatcher, flow := newFixture(t)
	require.NoError(t, ct.Add(ctx, catalog.ProductRef(2), 1))
	require.NoError(t, flow.BeginCheckout())

	form := validForm()
	form.PaymentMethod = models.PaymentOnline
	form.Screenshot = strings.NewReader("fake image bytes")
	form.UTRNumber = "UTR123456"

	record, err := flow.Submit(ctx, form)
	require.NoError(t, err)

	assert.Equal(t, []byte("fake image bytes"), record.PaymentScreenshot)
	assert.Equal(t, "UTR123456", record.UTRNumber)
	assert.Equal(t, 80, record.Shipping)
	require.Len(t, dispatcher.records, 1)
}

func TestSubmitAbortsOnAttachmentReadFailure(t *testing.T) {
	ctx := context.Background()
	ct, _, dispatcher, flow := newFixture(t)
	require.NoError(t, ct.Add(ctx, catalog.ProductRef(1), 1))
	require.NoError(t, flow.BeginCheckout())

	form := validForm()
	form.PaymentMethod = models.PaymentOnline
	form.Screenshot = failingReader{}
	form.UTRNumber = "UTR123456"

	record, err := flow.Submit(ctx, form)
	assert.Nil(t, record)
	assert.ErrorContains(t, err, "failed to read payment screenshot")

	// Order not completed: nothing dispatched, cart kept, state unchanged
	assert.Empty(t, dispatcher.records)
	assert.Equal(t, 1, ct.Len())
	assert.Equal(t, checkout.StateCheckout, flow.State())
}

func TestSubmitUsesSubmittedPaymentMethod(t *testing.T) {
	ctx := context.Background()
	ct, _, _, flow := newFixture(t)
	require.NoError(t, ct.Add(ctx, catalog.ProductRef(2), 1))
	require.NoError(t, flow.BeginCheckout())

	// Preview under cod, then submit online; totals must follow the submission
	preview := flow.Quote(models.PaymentCOD)
	assert.Equal(t, 50, preview.Shipping)

	form := validForm()
	form.PaymentMethod = models.PaymentOnline
	form.Screenshot = strings.NewReader("img")
	form.UTRNumber = "UTR1"

	record, err := flow.Submit(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, 80, record.Shipping)
}

func TestSubmitEmptyCart(t *testing.T) {
	ctx := context.Background()
	_, _, dispatcher, flow := newFixture(t)

	record, err := flow.Submit(ctx, validForm())
	assert.Nil(t, record)
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
	assert.Empty(t, dispatcher.records)
}
