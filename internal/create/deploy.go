package create

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rev-net/revdash/internal/fixedpoint"
	"github.com/rev-net/revdash/internal/types"
)

const (
	secondsPerDay = 86400

	// Ruleset durations are uint32 seconds on chain.
	maxSeconds = math.MaxUint32
	maxDays    = maxSeconds / secondsPerDay
)

// InitialIssuance is one token per native unit, 18 decimals.
var InitialIssuance = fixedpoint.MustParse("1", 18)

// StageConfig is one stage in the deployer's integer representation.
type StageConfig struct {
	StartsAtOrAfter int64             `json:"starts_at_or_after"` // unix seconds
	Duration        uint64            `json:"duration"`           // seconds, 0 = indefinite
	SplitPercent    uint64            `json:"split_percent"`      // out of 1e4
	InitialIssuance fixedpoint.Amount `json:"initial_issuance"`
	DecayFrequency  uint64            `json:"decay_frequency"` // seconds
	DecayPercent    uint64            `json:"decay_percent"`   // out of 1e9
	CashOutTaxRate  uint64            `json:"cash_out_tax_rate"`
}

type DeployConfig struct {
	Name            string            `json:"name"`
	Tagline         string            `json:"tagline"`
	TokenName       string            `json:"token_name"`
	TokenSymbol     string            `json:"token_symbol"`
	InitialOperator string            `json:"initial_operator"`
	PremintTokens   fixedpoint.Amount `json:"premint_tokens"`
	Stages          []StageConfig     `json:"stages"`
}

type parsedStage struct {
	durationSeconds  uint64
	frequencySeconds uint64
	decay            fixedpoint.Percent
	tax              fixedpoint.Percent
	split            fixedpoint.Percent
}

// BuildDeployConfig converts a completed form into deployer arguments. Each stage starts
// once every earlier stage has run its full duration.
func BuildDeployConfig(s FormState, now time.Time) (DeployConfig, error) {
	probe := s
	probe.Step = StepReview
	if err := probe.Validate(); err != nil {
		return DeployConfig{}, err
	}

	premint := fixedpoint.ZeroAmount(18)
	if s.PremintTokens != "" {
		var err error
		if premint, err = fixedpoint.Parse(s.PremintTokens, 18); err != nil {
			return DeployConfig{}, fmt.Errorf("%w: premint: %w", ErrValidation, err)
		}
	}
	operator := s.Operator
	if operator == "" {
		operator = "0x0000000000000000000000000000000000000000"
	}

	cfg := DeployConfig{
		Name:            s.Details.Name,
		Tagline:         s.Details.Tagline,
		TokenName:       s.Token.Name,
		TokenSymbol:     s.Token.Symbol,
		InitialOperator: operator,
		PremintTokens:   premint,
	}

	start := now.Unix()
	for i, in := range s.Stages {
		st, err := parseStage(in)
		if err != nil {
			return DeployConfig{}, fmt.Errorf("stage %d: %w", i+1, err)
		}
		cfg.Stages = append(cfg.Stages, StageConfig{
			StartsAtOrAfter: start,
			Duration:        st.durationSeconds,
			SplitPercent:    st.split.Value,
			InitialIssuance: InitialIssuance,
			DecayFrequency:  st.frequencySeconds,
			DecayPercent:    st.decay.Value,
			CashOutTaxRate:  st.tax.Value,
		})
		start += int64(st.durationSeconds)
	}
	return cfg, nil
}

// PreviewStages turns the config into stages the timeline and price chart understand.
func (c DeployConfig) PreviewStages() []types.Stage {
	stages := make([]types.Stage, 0, len(c.Stages))
	for i, sc := range c.Stages {
		stages = append(stages, types.Stage{
			Index:           i,
			StartTime:       time.Unix(sc.StartsAtOrAfter, 0).UTC(),
			Duration:        time.Duration(sc.Duration) * time.Second,
			DecayFrequency:  time.Duration(sc.DecayFrequency) * time.Second,
			InitialWeight:   sc.InitialIssuance,
			DecayPercent:    fixedpoint.NewDecayPercent(sc.DecayPercent),
			ReservedPercent: fixedpoint.NewReservedPercent(sc.SplitPercent),
			CashOutTaxRate:  fixedpoint.NewCashOutTaxRate(sc.CashOutTaxRate),
			BoostRecipient:  nonZero(c.InitialOperator),
		})
	}
	return stages
}

func parseStage(in StageInput) (parsedStage, error) {
	var out parsedStage
	var err error

	if out.durationSeconds, err = parseDays(in.DurationDays); err != nil {
		return out, fmt.Errorf("%w: duration: %w", ErrValidation, err)
	}
	if out.frequencySeconds, err = parseDays(in.PriceIncreaseFrequency); err != nil {
		return out, fmt.Errorf("%w: price increase frequency: %w", ErrValidation, err)
	}
	if out.decay, err = parseOptionalPercent(in.PriceIncreasePercent, fixedpoint.DecayScale); err != nil {
		return out, fmt.Errorf("%w: price increase: %w", ErrValidation, err)
	}
	if out.tax, err = parseOptionalPercent(in.CashOutTaxPercent, fixedpoint.TaxScale); err != nil {
		return out, fmt.Errorf("%w: cash out tax: %w", ErrValidation, err)
	}
	if out.split, err = parseOptionalPercent(in.SplitPercent, fixedpoint.ReservedScale); err != nil {
		return out, fmt.Errorf("%w: split: %w", ErrValidation, err)
	}
	if !out.decay.IsZero() && out.frequencySeconds == 0 {
		return out, fmt.Errorf("%w: a price increase needs a frequency", ErrValidation)
	}
	return out, nil
}

func parseDays(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	days, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number of days", s)
	}
	if days > maxDays {
		return 0, fmt.Errorf("%d days exceeds the maximum of %d", days, maxDays)
	}
	return days * secondsPerDay, nil
}

func parseOptionalPercent(s string, scale uint64) (fixedpoint.Percent, error) {
	if strings.TrimSpace(s) == "" {
		return fixedpoint.Percent{Value: 0, Scale: scale}, nil
	}
	return fixedpoint.ParsePercent(s, scale)
}

func nonZero(addr string) string {
	if strings.Trim(strings.TrimPrefix(addr, "0x"), "0") == "" {
		return ""
	}
	return addr
}
