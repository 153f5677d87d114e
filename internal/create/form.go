/*

The create wizard. FormState is an immutable value; every transition takes the current state
and an input and returns the next state, leaving the receiver untouched. The web layer keeps
no form state of its own: the client posts the whole state back on every step.

*/

package create

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rev-net/revdash/internal/fixedpoint"
	"github.com/rev-net/revdash/internal/types"
)

var (
	ErrValidation = errors.New("invalid form input")
	ErrStep       = errors.New("transition not allowed at this step")
)

type Step int

const (
	StepDetails Step = iota
	StepToken
	StepStages
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepDetails:
		return "details"
	case StepToken:
		return "token"
	case StepStages:
		return "stages"
	case StepReview:
		return "review"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

type Details struct {
	Name    string `json:"name"`
	Tagline string `json:"tagline"`
}

type Token struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// StageInput holds one stage exactly as typed into the form.
type StageInput struct {
	DurationDays           string `json:"duration_days"` // empty = indefinite, last stage only
	PriceIncreasePercent   string `json:"price_increase_percent"`
	PriceIncreaseFrequency string `json:"price_increase_frequency_days"`
	CashOutTaxPercent      string `json:"cash_out_tax_percent"`
	SplitPercent           string `json:"split_percent"`
}

type FormState struct {
	Step          Step         `json:"step"`
	Details       Details      `json:"details"`
	Token         Token        `json:"token"`
	Stages        []StageInput `json:"stages"`
	Operator      string       `json:"operator"`
	PremintTokens string       `json:"premint_tokens"`
}

// New returns an empty form on the first step.
func New() FormState { return FormState{Step: StepDetails} }

func (s FormState) SetDetails(d Details) (FormState, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Tagline = strings.TrimSpace(d.Tagline)
	next := s.clone()
	next.Details = d
	return next, nil
}

func (s FormState) SetToken(t Token) (FormState, error) {
	t.Name = strings.TrimSpace(t.Name)
	t.Symbol = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(t.Symbol), "$"))
	next := s.clone()
	next.Token = t
	return next, nil
}

// SetOperator records the initial operator and the premint. Both are optional.
func (s FormState) SetOperator(operator, premint string) (FormState, error) {
	operator = strings.TrimSpace(operator)
	if operator != "" {
		if err := types.ValidateAddress(operator); err != nil {
			return s, fmt.Errorf("%w: operator: %w", ErrValidation, err)
		}
	}
	premint = strings.TrimSpace(premint)
	if premint != "" {
		a, err := fixedpoint.Parse(premint, 18)
		if err != nil || a.IsNegative() {
			return s, fmt.Errorf("%w: premint %q", ErrValidation, premint)
		}
	}
	next := s.clone()
	next.Operator = operator
	next.PremintTokens = premint
	return next, nil
}

// AddStage appends a stage after checking its fields parse.
func (s FormState) AddStage(in StageInput) (FormState, error) {
	if s.Step != StepStages {
		return s, fmt.Errorf("%w: add stage on %s", ErrStep, s.Step)
	}
	if _, err := parseStage(in); err != nil {
		return s, err
	}
	next := s.clone()
	next.Stages = append(next.Stages, in)
	return next, nil
}

// RemoveStage drops the stage at position i.
func (s FormState) RemoveStage(i int) (FormState, error) {
	if s.Step != StepStages {
		return s, fmt.Errorf("%w: remove stage on %s", ErrStep, s.Step)
	}
	if i < 0 || i >= len(s.Stages) {
		return s, fmt.Errorf("%w: no stage %d", ErrValidation, i)
	}
	next := s.clone()
	next.Stages = append(next.Stages[:i:i], s.Stages[i+1:]...)
	return next, nil
}

// Next validates the current step and advances.
func (s FormState) Next() (FormState, error) {
	if err := s.validateStep(); err != nil {
		return s, err
	}
	if s.Step == StepReview {
		return s, fmt.Errorf("%w: already on review", ErrStep)
	}
	next := s.clone()
	next.Step++
	return next, nil
}

// Back returns to the previous step without validating.
func (s FormState) Back() (FormState, error) {
	if s.Step == StepDetails {
		return s, fmt.Errorf("%w: already on first step", ErrStep)
	}
	next := s.clone()
	next.Step--
	return next, nil
}

// Validate checks every step up to and including the current one.
func (s FormState) Validate() error {
	for step := StepDetails; step <= s.Step && step <= StepReview; step++ {
		probe := s
		probe.Step = step
		if err := probe.validateStep(); err != nil {
			return err
		}
	}
	return nil
}

func (s FormState) validateStep() error {
	switch s.Step {
	case StepDetails:
		if s.Details.Name == "" {
			return fmt.Errorf("%w: name is required", ErrValidation)
		}
	case StepToken:
		if s.Token.Name == "" || s.Token.Symbol == "" {
			return fmt.Errorf("%w: token name and symbol are required", ErrValidation)
		}
	case StepStages:
		if len(s.Stages) == 0 {
			return fmt.Errorf("%w: at least one stage is required", ErrValidation)
		}
		var total uint64
		for i, in := range s.Stages {
			st, err := parseStage(in)
			if err != nil {
				return fmt.Errorf("stage %d: %w", i+1, err)
			}
			if st.durationSeconds == 0 && i < len(s.Stages)-1 {
				return fmt.Errorf("%w: only the last stage may be indefinite", ErrValidation)
			}
			// every stage start is an offset from the first one
			total += st.durationSeconds
			if total > maxSeconds {
				return fmt.Errorf("%w: stages run past %d days in total", ErrValidation, uint64(maxDays))
			}
		}
	case StepReview:
	default:
		return fmt.Errorf("%w: unknown step %d", ErrStep, int(s.Step))
	}
	return nil
}

func (s FormState) clone() FormState {
	next := s
	next.Stages = append([]StageInput(nil), s.Stages...)
	return next
}
