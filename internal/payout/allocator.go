package payout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rashedq/marketpay/internal/earnings"
	"github.com/rashedq/marketpay/internal/earnings/fees"
)

// Common errors
var (
	ErrAmountMismatch         = errors.New("selected earnings do not sum to the requested amount")
	ErrAmountExceedsAvailable = errors.New("requested amount exceeds the available balance")
	ErrNoAvailableBalance     = errors.New("no available balance to pay out")
)

// Violation describes one earning entry rejected during explicit selection
type Violation struct {
	EntryID int64  `json:"entry_id"`
	Reason  string `json:"reason"`
}

func (v Violation) String() string {
	return fmt.Sprintf("entry %d: %s", v.EntryID, v.Reason)
}

// ValidationError aggregates every violation found while validating an
// explicit selection. The payout is rejected as a whole - no partial effect.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	details := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		details[i] = v.String()
	}
	return "invalid earning selection: " + strings.Join(details, "; ")
}

// Details returns one line per violation for API responses
func (e *ValidationError) Details() []string {
	details := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		details[i] = v.String()
	}
	return details
}

// SplitPlan records the one entry that must be split to hit the target amount
type SplitPlan struct {
	Entry  *earnings.EarningEntry
	Take   int64
	Result fees.SplitResult
}

// Selection is the outcome of allocation: the whole entries to lock, an
// optional split, and the payout totals
type Selection struct {
	Entries     []*earnings.EarningEntry
	Split       *SplitPlan
	TotalAmount int64
	FeeAmount   int64
	NetAmount   int64
}

func (s *Selection) add(a fees.Amounts) {
	s.TotalAmount += a.Gross
	s.FeeAmount += a.PlatformFee + a.ProcessingFee
	s.NetAmount += a.Net
}

// SelectExplicit validates a caller-chosen list of earning entries against the
// fetched rows. Every id must belong to the business, be available and
// unlocked; all violations are collected, not just the first. When an amount
// is given the selected nets must sum to it exactly - entries are never
// partially used in this mode.
func SelectExplicit(entries []*earnings.EarningEntry, requestedIDs []int64, businessID int64, amount *int64) (*Selection, error) {
	byID := make(map[int64]*earnings.EarningEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	var violations []Violation
	seen := make(map[int64]bool, len(requestedIDs))
	selection := &Selection{}

	for _, id := range requestedIDs {
		if seen[id] {
			violations = append(violations, Violation{EntryID: id, Reason: "duplicate id in request"})
			continue
		}
		seen[id] = true

		entry, found := byID[id]
		if !found {
			violations = append(violations, Violation{EntryID: id, Reason: "not found"})
			continue
		}
		if entry.BusinessID != businessID {
			violations = append(violations, Violation{EntryID: id, Reason: "belongs to another business"})
			continue
		}
		if entry.Locked() {
			violations = append(violations, Violation{EntryID: id, Reason: "already linked to a payout"})
			continue
		}
		if entry.Status != earnings.EntryStatusAvailable {
			violations = append(violations, Violation{EntryID: id, Reason: fmt.Sprintf("status is %s, not AVAILABLE", entry.Status)})
			continue
		}

		selection.Entries = append(selection.Entries, entry)
		selection.add(entry.Amounts())
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	if amount != nil && selection.NetAmount != *amount {
		return nil, ErrAmountMismatch
	}

	return selection, nil
}

// SelectByAmount greedily accumulates available entries, oldest first, until
// the target amount is reached. The entry that would overshoot is split so the
// payout receives exactly the remainder needed. A nil amount means "everything
// available".
func SelectByAmount(available []*earnings.EarningEntry, amount *int64) (*Selection, error) {
	var availableTotal int64
	for _, e := range available {
		availableTotal += e.NetAmount
	}

	if amount != nil && *amount <= 0 {
		return nil, ErrNoAvailableBalance
	}
	if availableTotal <= 0 {
		return nil, ErrNoAvailableBalance
	}

	target := availableTotal
	if amount != nil {
		target = *amount
	}
	if target > availableTotal {
		return nil, ErrAmountExceedsAvailable
	}

	selection := &Selection{}
	var running int64

	for _, entry := range available {
		remaining := target - running

		if entry.NetAmount <= remaining {
			selection.Entries = append(selection.Entries, entry)
			selection.add(entry.Amounts())
			running += entry.NetAmount
			if running == target {
				break
			}
			continue
		}

		// This entry overshoots: split it and take only what is needed
		result, err := fees.Split(entry.Amounts(), remaining)
		if err != nil {
			return nil, err
		}
		selection.Split = &SplitPlan{Entry: entry, Take: remaining, Result: result}
		selection.add(result.Part)
		running += remaining
		break
	}

	return selection, nil
}
