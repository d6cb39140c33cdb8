package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/creatorstore/pkg/cart"
	"github.com/example/creatorstore/pkg/config"
	"github.com/example/creatorstore/pkg/models"
	"github.com/example/creatorstore/pkg/pricing"
	"go.uber.org/zap"
)

// State of the storefront flow. Transitions only happen on explicit user
// actions; there are no timeouts.
type State string

const (
	StateBrowsing      State = "browsing"
	StateProductDetail State = "product_detail"
	StateCart          State = "cart"
	StateCheckout      State = "checkout"
	StateSuccess       State = "success"
)

var ErrEmptyCart = errors.New("cart is empty")

// ValidationError lists the required fields missing from a submission. It
// is surfaced inline to the customer, never treated as fatal.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Form is one checkout submission. Screenshot is nil unless the customer
// attached payment proof.
type Form struct {
	Name          string
	Phone         string
	Email         string
	Address       string
	PaymentMethod models.PaymentMethod
	Screenshot    io.Reader
	UTRNumber     string
}

// Dispatcher receives the completed order record for invoice rendering and
// admin notification. Delivery is fire-and-forget; its failures never roll
// back a completed checkout.
type Dispatcher interface {
	Dispatch(record *models.OrderRecord)
}

// Flow drives one customer's journey from browsing to a completed order.
type Flow struct {
	cart       *cart.Store
	rules      config.ShippingConfig
	dispatcher Dispatcher
	logger     *zap.Logger
	state      State
	now        func() time.Time
}

func NewFlow(c *cart.Store, rules config.ShippingConfig, d Dispatcher, logger *zap.Logger) *Flow {
	return &Flow{
		cart:       c,
		rules:      rules,
		dispatcher: d,
		logger:     logger,
		state:      StateBrowsing,
		now:        time.Now,
	}
}

func (f *Flow) State() State {
	return f.state
}

func (f *Flow) ViewProduct() {
	f.state = StateProductDetail
}

func (f *Flow) ViewCart() {
	f.state = StateCart
}

func (f *Flow) ContinueShopping() {
	f.state = StateBrowsing
}

// BeginCheckout moves to the checkout state. An empty cart cannot check out.
func (f *Flow) BeginCheckout() error {
	if f.cart.Len() == 0 {
		return ErrEmptyCart
	}
	f.state = StateCheckout
	return nil
}

// Quote prices the current cart under a candidate payment method, for the
// shipping preview shown while the customer fills the form.
func (f *Flow) Quote(method models.PaymentMethod) pricing.Quote {
	return pricing.Calculate(f.cart.Items(), method, f.rules)
}

// Submit validates the form, assembles the order record, hands it to the
// dispatcher and clears the cart. On any failure the cart is untouched and
// the flow stays in the checkout state.
func (f *Flow) Submit(ctx context.Context, form Form) (*models.OrderRecord, error) {
	if f.cart.Len() == 0 {
		return nil, ErrEmptyCart
	}

	if err := validate(form); err != nil {
		return nil, err
	}

	// Totals come from this submission's payment method, never a cached one
	quote := pricing.Calculate(f.cart.Items(), form.PaymentMethod, f.rules)

	// One clock read, so the order id and the date always agree
	placedAt := f.now()

	record := &models.OrderRecord{
		OrderID: fmt.Sprintf("ORD%d", placedAt.UnixMilli()),
		Date:    placedAt,
		Customer: models.Customer{
			Name:    form.Name,
			Phone:   form.Phone,
			Email:   form.Email,
			Address: form.Address,
		},
		PaymentMethod: form.PaymentMethod,
		Items:         f.cart.Items(),
		Subtotal:      quote.Subtotal,
		Shipping:      quote.Shipping,
		Total:         quote.Total,
		UTRNumber:     form.UTRNumber,
	}

	// The attachment must be fully read before the record is complete;
	// a failed read aborts the submission.
	if form.Screenshot != nil {
		data, err := io.ReadAll(form.Screenshot)
		if err != nil {
			return nil, fmt.Errorf("failed to read payment screenshot: %w", err)
		}
		record.PaymentScreenshot = data
	}

	f.dispatcher.Dispatch(record)

	if err := f.cart.Clear(ctx); err != nil {
		f.logger.Error("Failed to persist cleared cart", zap.Error(err))
	}
	f.state = StateSuccess

	f.logger.Info("Order completed",
		zap.String("order_id", record.OrderID),
		zap.String("payment_method", string(record.PaymentMethod)),
		zap.Int("total", record.Total))

	return record, nil
}

func validate(form Form) error {
	var missing []string
	if strings.TrimSpace(form.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(form.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(form.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(form.Address) == "" {
		missing = append(missing, "address")
	}
	if form.PaymentMethod == "" {
		missing = append(missing, "paymentMethod")
	}

	if form.PaymentMethod == models.PaymentOnline {
		if form.Screenshot == nil {
			missing = append(missing, "paymentScreenshot")
		}
		if strings.TrimSpace(form.UTRNumber) == "" {
			missing = append(missing, "utrNumber")
		}
	}

	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}
