// Package billing provides domain models for monthly billing in a multi-tenant
// villa and apartment management application.
//
// This package implements the billing bounded context, which is responsible for:
//   - Building monthly invoices and splitting their cost across occupied units
//   - Tracking per-unit payments through their lifecycle
//   - Managing one-off bills to non-residents (external bills)
//
// Key Aggregates:
//   - Invoice: A monthly bill for a building, split into per-unit payments
//   - Payment: One unit's share of an invoice
//   - ExternalBill: A one-off bill to a billee outside the building
//
// The billing domain integrates with:
//   - Community domain: For tenant, unit and resident information
package billing
