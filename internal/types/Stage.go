/*

A stage is one entry of a network's ruleset schedule: when it starts, how long it lasts, how
often its issuance weight decays, and the split and cash out parameters that apply while it is
active.

*/

package types

import (
	"fmt"
	"regexp"
	"time"

	"github.com/rev-net/revdash/internal/fixedpoint"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

type Stage struct {
	Index           int                `json:"index"`            // declaration order, 0-based
	StartTime       time.Time          `json:"start_time"`       // e.g., first block timestamp of the ruleset
	Duration        time.Duration      `json:"duration"`         // 0 = indefinite
	DecayFrequency  time.Duration      `json:"decay_frequency"`  // cycle length; 0 = weight never decays
	InitialWeight   fixedpoint.Amount  `json:"initial_weight"`   // tokens per native unit, 18 decimals
	DecayPercent    fixedpoint.Percent `json:"decay_percent"`    // out of 1e9, applied per cycle
	ReservedPercent fixedpoint.Percent `json:"reserved_percent"` // out of 1e4, the boost split
	CashOutTaxRate  fixedpoint.Percent `json:"cash_out_tax_rate"`
	BoostRecipient  string             `json:"boost_recipient,omitempty"`
}

// End returns start + duration, or false for an indefinite stage.
func (s Stage) End() (time.Time, bool) {
	if s.Duration == 0 {
		return time.Time{}, false
	}
	return s.StartTime.Add(s.Duration), true
}

func (s Stage) Validate() error {
	if s.Index < 0 {
		return fmt.Errorf("%w: negative index %d", ErrInvalidStage, s.Index)
	}
	if s.Duration < 0 || s.DecayFrequency < 0 {
		return fmt.Errorf("%w: stage %d has negative duration", ErrInvalidStage, s.Index)
	}
	if s.InitialWeight.IsNegative() {
		return fmt.Errorf("%w: stage %d has negative weight", ErrInvalidStage, s.Index)
	}
	if err := s.DecayPercent.Validate(); err != nil {
		return fmt.Errorf("%w: stage %d decay: %w", ErrInvalidStage, s.Index, err)
	}
	if err := s.ReservedPercent.Validate(); err != nil {
		return fmt.Errorf("%w: stage %d split: %w", ErrInvalidStage, s.Index, err)
	}
	if err := s.CashOutTaxRate.Validate(); err != nil {
		return fmt.Errorf("%w: stage %d tax: %w", ErrInvalidStage, s.Index, err)
	}
	if s.BoostRecipient != "" {
		if err := ValidateAddress(s.BoostRecipient); err != nil {
			return fmt.Errorf("%w: stage %d: %w", ErrInvalidStage, s.Index, err)
		}
	}
	return nil
}

// ValidateAddress checks the 0x-prefixed 20 byte hex form.
func ValidateAddress(addr string) error {
	if !addressPattern.MatchString(addr) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return nil
}
