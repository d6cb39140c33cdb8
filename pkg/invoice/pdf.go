// Package invoice renders the downloadable order invoice.
package invoice

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/example/creatorstore/pkg/config"
	"github.com/example/creatorstore/pkg/models"
	"github.com/jung-kurt/gofpdf"
)

// Past this y position the current page is full and item lines continue on
// a fresh one.
const pageBreakY = 250.0

type Renderer struct {
	storeName string
	outputDir string
}

func NewRenderer(cfg config.InvoiceConfig, storeName string) *Renderer {
	return &Renderer{
		storeName: storeName,
		outputDir: cfg.OutputDir,
	}
}

// Filename is the name of the downloadable invoice for an order.
func Filename(orderID string) string {
	return fmt.Sprintf("Order_%s.pdf", orderID)
}

// Render writes the invoice PDF into the output directory and returns its
// path.
func (r *Renderer) Render(record *models.OrderRecord) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create invoice dir: %w", err)
	}

	path := filepath.Join(r.outputDir, Filename(record.OrderID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create invoice file: %w", err)
	}
	defer f.Close()

	if err := r.WriteTo(record, f); err != nil {
		return "", err
	}
	return path, nil
}

// WriteTo renders the invoice document for record into w.
func (r *Renderer) WriteTo(record *models.OrderRecord, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, r.storeName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 10, "Order Invoice", "", 1, "C", false, 0, "")

	y := 45.0
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(20, y, fmt.Sprintf("Order ID: %s", record.OrderID))
	y += 7
	pdf.Text(20, y, fmt.Sprintf("Date: %s", record.Date.Format("02 Jan 2006 15:04")))
	y += 10

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(20, y, "Customer Information:")
	y += 8
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(20, y, fmt.Sprintf("Name: %s", record.Customer.Name))
	y += 7
	pdf.Text(20, y, fmt.Sprintf("Phone: %s", record.Customer.Phone))
	y += 7
	pdf.Text(20, y, fmt.Sprintf("Email: %s", record.Customer.Email))
	y += 7
	pdf.Text(20, y, fmt.Sprintf("Address: %s", record.Customer.Address))
	y += 10

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(20, y, "Order Items:")
	y += 8
	pdf.SetFont("Helvetica", "", 10)

	for _, item := range record.Items {
		pdf.Text(20, y, fmt.Sprintf("%s - Qty: %d - Rs. %d", item.Name, item.Quantity, item.LineTotal()))
		y += 7
		if y > pageBreakY {
			pdf.AddPage()
			y = 20
		}
	}

	y += 5
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(20, y, fmt.Sprintf("Subtotal: Rs. %d", record.Subtotal))
	y += 7
	pdf.Text(20, y, fmt.Sprintf("Shipping: Rs. %d", record.Shipping))
	y += 7
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(20, y, fmt.Sprintf("Total: Rs. %d", record.Total))
	y += 7
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(20, y, fmt.Sprintf("Payment Method: %s", paymentLabel(record.PaymentMethod)))

	if record.PaymentMethod == models.PaymentOnline && len(record.PaymentScreenshot) > 0 {
		y += 15
		if y > pageBreakY-100 {
			pdf.AddPage()
			y = 20
		}
		pdf.Text(20, y, "Payment Screenshot:")
		y += 7
		if embedScreenshot(pdf, record, 20, y) {
			y += 85
		} else {
			pdf.Text(20, y, "Screenshot attached separately")
			y += 7
		}
		pdf.Text(20, y, fmt.Sprintf("UTR Number: %s", record.UTRNumber))
	}

	// Text placement avoids tripping the auto page break near the margin
	pdf.SetFont("Helvetica", "", 10)
	footer := "Thank you for your order!"
	pageWidth, pageHeight := pdf.GetPageSize()
	pdf.Text((pageWidth-pdf.GetStringWidth(footer))/2, pageHeight-17, footer)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render invoice: %w", err)
	}
	return nil
}

// embedScreenshot places the uploaded payment proof on the page when it is
// an image format the document supports.
func embedScreenshot(pdf *gofpdf.Fpdf, record *models.OrderRecord, x, y float64) bool {
	var imageType string
	switch http.DetectContentType(record.PaymentScreenshot) {
	case "image/png":
		imageType = "PNG"
	case "image/jpeg":
		imageType = "JPG"
	default:
		return false
	}

	name := "screenshot-" + record.OrderID
	opts := gofpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(record.PaymentScreenshot))
	if pdf.Err() {
		// A malformed upload should not sink the whole invoice
		pdf.ClearError()
		return false
	}
	pdf.ImageOptions(name, x, y, 100, 80, false, opts, 0, "")
	if pdf.Err() {
		pdf.ClearError()
		return false
	}
	return true
}

func paymentLabel(method models.PaymentMethod) string {
	switch method {
	case models.PaymentCOD:
		return "COD"
	case models.PaymentOnline:
		return "ONLINE"
	default:
		return string(method)
	}
}
