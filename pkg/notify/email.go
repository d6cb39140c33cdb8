// Package notify delivers new-order summaries to the store admin.
// Delivery is best-effort; a failed send is logged and the order stands.
package notify

import (
	"fmt"
	"strings"

	"github.com/example/creatorstore/pkg/config"
	"github.com/example/creatorstore/pkg/models"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

type Notifier struct {
	smtp       config.SMTPConfig
	adminEmail string
	logger     *zap.Logger
}

func NewNotifier(smtp config.SMTPConfig, adminEmail string, logger *zap.Logger) *Notifier {
	return &Notifier{
		smtp:       smtp,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// Notify sends the order summary toward the admin contact.
func (n *Notifier) Notify(record *models.OrderRecord) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", n.smtp.From)
	msg.SetHeader("To", n.adminEmail)
	msg.SetHeader("Subject", fmt.Sprintf("New Order %s", record.OrderID))
	msg.SetBody("text/plain", Summary(record))

	dialer := gomail.NewDialer(n.smtp.Host, n.smtp.Port, n.smtp.Username, n.smtp.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send admin notification: %w", err)
	}

	n.logger.Info("Admin notified",
		zap.String("order_id", record.OrderID),
		zap.String("recipient", n.adminEmail))
	return nil
}

// Summary builds the human-readable order digest sent to the admin.
func Summary(record *models.OrderRecord) string {
	var b strings.Builder

	b.WriteString("New Order Received\n\n")
	fmt.Fprintf(&b, "Order ID: %s\n", record.OrderID)
	fmt.Fprintf(&b, "Date: %s\n\n", record.Date.Format("02 Jan 2006 15:04"))

	b.WriteString("Customer Information:\n")
	fmt.Fprintf(&b, "Name: %s\n", record.Customer.Name)
	fmt.Fprintf(&b, "Phone: %s\n", record.Customer.Phone)
	fmt.Fprintf(&b, "Email: %s\n", record.Customer.Email)
	fmt.Fprintf(&b, "Address: %s\n\n", record.Customer.Address)

	b.WriteString("Order Items:\n")
	for _, item := range record.Items {
		fmt.Fprintf(&b, "%s - Qty: %d - Rs. %d\n", item.Name, item.Quantity, item.LineTotal())
	}

	fmt.Fprintf(&b, "\nSubtotal: Rs. %d\n", record.Subtotal)
	fmt.Fprintf(&b, "Shipping: Rs. %d\n", record.Shipping)
	fmt.Fprintf(&b, "Total: Rs. %d\n", record.Total)
	fmt.Fprintf(&b, "Payment Method: %s\n", strings.ToUpper(string(record.PaymentMethod)))

	if record.PaymentMethod == models.PaymentOnline {
		fmt.Fprintf(&b, "UTR Number: %s\n", record.UTRNumber)
		b.WriteString("Payment Screenshot: see attached invoice\n")
	}

	return b.String()
}
