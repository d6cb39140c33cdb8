// Package worker runs the fire-and-forget order side effects on actors:
// invoice rendering and admin notification. Their failures are logged and
// never reach the checkout flow.
package worker

import (
	"fmt"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/example/creatorstore/pkg/invoice"
	"github.com/example/creatorstore/pkg/models"
	"github.com/example/creatorstore/pkg/notify"
	"go.uber.org/zap"
)

// Messages
type RenderInvoice struct {
	Record *models.OrderRecord
}

type NotifyAdmin struct {
	Record *models.OrderRecord
}

// InvoiceActor renders the downloadable invoice for completed orders
type InvoiceActor struct {
	renderer *invoice.Renderer
	logger   *zap.Logger
}

func (a *InvoiceActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *RenderInvoice:
		path, err := a.renderer.Render(msg.Record)
		if err != nil {
			a.logger.Error("Failed to render invoice",
				zap.String("order_id", msg.Record.OrderID),
				zap.Error(err))
			return
		}
		a.logger.Info("Invoice rendered",
			zap.String("order_id", msg.Record.OrderID),
			zap.String("path", path))

	case *actor.Started:
		a.logger.Info("Invoice actor started")

	case *actor.Stopped:
		a.logger.Info("Invoice actor stopped")
	}
}

// NotificationActor delivers the order summary to the admin contact
type NotificationActor struct {
	notifier *notify.Notifier
	logger   *zap.Logger
}

func (a *NotificationActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *NotifyAdmin:
		if err := a.notifier.Notify(msg.Record); err != nil {
			a.logger.Error("Failed to notify admin",
				zap.String("order_id", msg.Record.OrderID),
				zap.Error(err))
		}

	case *actor.Started:
		a.logger.Info("Notification actor started")
	}
}

// Dispatcher fans a completed order out to both actors. It satisfies
// checkout.Dispatcher.
type Dispatcher struct {
	root       *actor.RootContext
	invoicePID *actor.PID
	notifyPID  *actor.PID
}

func (d *Dispatcher) Dispatch(record *models.OrderRecord) {
	d.root.Send(d.invoicePID, &RenderInvoice{Record: record})
	d.root.Send(d.notifyPID, &NotifyAdmin{Record: record})
}

// StartWorkers spawns the order side-effect actors on the given system.
func StartWorkers(system *actor.ActorSystem, renderer *invoice.Renderer, notifier *notify.Notifier, logger *zap.Logger) (*Dispatcher, error) {
	invoiceProps := actor.PropsFromProducer(func() actor.Actor {
		return &InvoiceActor{renderer: renderer, logger: logger.Named("invoice-actor")}
	})
	invoicePID, err := system.Root.SpawnNamed(invoiceProps, "invoice-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn invoice actor: %w", err)
	}

	notifyProps := actor.PropsFromProducer(func() actor.Actor {
		return &NotificationActor{notifier: notifier, logger: logger.Named("notification-actor")}
	})
	notifyPID, err := system.Root.SpawnNamed(notifyProps, "notification-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn notification actor: %w", err)
	}

	logger.Info("Order workers started",
		zap.String("invoice_actor", invoicePID.Id),
		zap.String("notification_actor", notifyPID.Id))

	return &Dispatcher{
		root:       system.Root,
		invoicePID: invoicePID,
		notifyPID:  notifyPID,
	}, nil
}
