package billing

import (
	"fmt"

	"github.com/villahub/backend/internal/domain/shared"
	"github.com/villahub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Participant is one billable unit occupant taking part in an allocation
type Participant struct {
	ResidentID   uuid.UUID `json:"resident_id"`
	ResidentName string    `json:"resident_name"`
	UnitID       uuid.UUID `json:"unit_id"`
	RoomNumber   string    `json:"room_number"`
}

// Override assigns a specific unit either an absolute amount or a ratio
// (0.0-1.0) of the total. Exactly one of Amount and Ratio must be set.
type Override struct {
	UnitID uuid.UUID          `json:"unit_id"`
	Amount *valueobject.Money `json:"amount,omitempty"`
	Ratio  *decimal.Decimal   `json:"ratio,omitempty"`
}

// Allocation is one participant's share of an invoice total
type Allocation struct {
	Participant Participant       `json:"participant"`
	Amount      valueobject.Money `json:"amount"`
}

// AllocateFixed produces one allocation of perUnitAmount per participant.
// The invoice total is perUnitAmount multiplied by the participant count.
func AllocateFixed(perUnitAmount valueobject.Money, participants []Participant) ([]Allocation, error) {
	if len(participants) == 0 {
		return nil, shared.NewDomainError("NOT_FOUND", "No residents registered for this tenant")
	}
	if !perUnitAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Per-unit amount must be positive")
	}
	if !perUnitAmount.IsWhole() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Per-unit amount must be a whole won")
	}

	allocations := make([]Allocation, len(participants))
	for i, p := range participants {
		allocations[i] = Allocation{Participant: p, Amount: perUnitAmount}
	}
	return allocations, nil
}

// AllocateTotal splits totalAmount across the participants. Units named in
// the overrides list receive their override amount (absolute, or ratio of
// the total); the remainder is split evenly across the rest, one won at a
// time from the first unit, so the allocated amounts sum exactly to the
// total.
func AllocateTotal(totalAmount valueobject.Money, participants []Participant, overrides []Override) ([]Allocation, error) {
	if len(participants) == 0 {
		return nil, shared.NewDomainError("NOT_FOUND", "No residents registered for this tenant")
	}
	if !totalAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount must be positive")
	}
	if !totalAmount.IsWhole() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount must be a whole won")
	}

	overrideByUnit := make(map[uuid.UUID]Override, len(overrides))
	for _, ov := range overrides {
		if ov.UnitID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_OVERRIDE", "Override unit ID cannot be empty")
		}
		if (ov.Amount == nil) == (ov.Ratio == nil) {
			return nil, shared.NewDomainError("INVALID_OVERRIDE", "Override must set exactly one of amount or ratio")
		}
		if _, dup := overrideByUnit[ov.UnitID]; dup {
			return nil, shared.NewDomainError("INVALID_OVERRIDE", fmt.Sprintf("Duplicate override for unit %s", ov.UnitID))
		}
		overrideByUnit[ov.UnitID] = ov
	}

	// Resolve override amounts and collect the normal units.
	amounts := make(map[uuid.UUID]valueobject.Money, len(participants))
	var normal []Participant
	overrideSum := valueobject.ZeroKRW()
	matched := 0

	for _, p := range participants {
		ov, ok := overrideByUnit[p.UnitID]
		if !ok {
			normal = append(normal, p)
			continue
		}
		matched++

		var amount valueobject.Money
		if ov.Amount != nil {
			amount = *ov.Amount
		} else {
			if ov.Ratio.IsNegative() || ov.Ratio.GreaterThan(decimal.NewFromInt(1)) {
				return nil, shared.NewDomainError("INVALID_OVERRIDE", "Override ratio must be between 0.0 and 1.0")
			}
			amount = totalAmount.Multiply(*ov.Ratio).Truncate(0)
		}
		if amount.IsNegative() {
			return nil, shared.NewDomainError("INVALID_OVERRIDE", "Override amount cannot be negative")
		}
		if !amount.IsWhole() {
			return nil, shared.NewDomainError("INVALID_OVERRIDE", "Override amount must be a whole won")
		}

		amounts[p.UnitID] = amount
		overrideSum = overrideSum.MustAdd(amount)
	}

	if matched != len(overrideByUnit) {
		return nil, shared.NewDomainError("INVALID_OVERRIDE", "Override references a unit that is not participating")
	}

	remaining := totalAmount.MustSubtract(overrideSum)
	if remaining.IsNegative() {
		return nil, shared.NewDomainError("INVALID_OVERRIDE", "Override amounts exceed the invoice total")
	}

	if len(normal) == 0 {
		if !remaining.IsZero() {
			return nil, shared.NewDomainError("INVALID_OVERRIDE",
				fmt.Sprintf("Overrides cover every unit but leave %s unallocated", remaining))
		}
	} else {
		shares, err := remaining.SplitEven(len(normal))
		if err != nil {
			return nil, shared.NewDomainError("INVALID_AMOUNT", err.Error())
		}
		for i, p := range normal {
			amounts[p.UnitID] = shares[i]
		}
	}

	allocations := make([]Allocation, len(participants))
	for i, p := range participants {
		allocations[i] = Allocation{Participant: p, Amount: amounts[p.UnitID]}
	}
	return allocations, nil
}

// AllocationSum returns the sum of all allocated amounts
func AllocationSum(allocations []Allocation) valueobject.Money {
	sum := valueobject.ZeroKRW()
	for _, a := range allocations {
		sum = sum.MustAdd(a.Amount)
	}
	return sum
}
