package event

import (
	"github.com/villahub/backend/internal/domain/billing"
	"github.com/villahub/backend/internal/domain/community"
)

// RegisterAllEvents registers all domain event types with the serializer.
// This is required for the OutboxProcessor to deserialize events from the
// outbox table.
//
// Invoice events are at schema version 2: version 1 payloads named the
// billing month field "month", so outbox rows written before the rename
// still drain after a deploy.
func RegisterAllEvents(serializer *VersionedEventSerializer) error {
	// Billing domain - Invoice events
	if err := serializer.RegisterVersioned("InvoiceCreated", &billing.InvoiceCreatedEvent{}, 2,
		RenameField(1, "month", "billing_month"),
	); err != nil {
		return err
	}
	if err := serializer.RegisterVersioned("InvoiceUpdated", &billing.InvoiceUpdatedEvent{}, 2,
		RenameField(1, "month", "billing_month"),
	); err != nil {
		return err
	}

	// Billing domain - Payment events
	serializer.Register("PaymentCompleted", &billing.PaymentCompletedEvent{})

	// Billing domain - External bill events
	serializer.Register("ExternalBillCreated", &billing.ExternalBillCreatedEvent{})
	serializer.Register("ExternalBillSelfReported", &billing.ExternalBillSelfReportedEvent{})
	serializer.Register("ExternalBillConfirmed", &billing.ExternalBillConfirmedEvent{})

	// Community domain - Tenant events
	serializer.Register("TenantCreated", &community.TenantCreatedEvent{})
	serializer.Register("TenantAutoBillingConfigured", &community.TenantAutoBillingConfiguredEvent{})

	// Community domain - Resident events
	serializer.Register("ResidentMovedIn", &community.ResidentMovedInEvent{})
	serializer.Register("ResidentMovedOut", &community.ResidentMovedOutEvent{})

	return nil
}
