package domain

import "fmt"

// Verdict is the action the gateway takes for a CV2/AVS match outcome.
type Verdict string

const (
	VerdictAccept Verdict = "accept"
	VerdictReject Verdict = "reject"
)

// MatchOutcome is a CV2/AVS check result.
type MatchOutcome string

const (
	OutcomeNotProvided  MatchOutcome = "notprovided"
	OutcomeNotChecked   MatchOutcome = "notchecked"
	OutcomeMatched      MatchOutcome = "matched"
	OutcomeNotMatched   MatchOutcome = "notmatched"
	OutcomePartialMatch MatchOutcome = "partialmatch"
)

// PolicyRule maps each match outcome to a verdict.
// An empty Verdict means "unset" and is filled from the default table on Merge.
type PolicyRule struct {
	NotProvided  Verdict `json:"notprovided,omitempty"`
	NotChecked   Verdict `json:"notchecked,omitempty"`
	Matched      Verdict `json:"matched,omitempty"`
	NotMatched   Verdict `json:"notmatched,omitempty"`
	PartialMatch Verdict `json:"partialmatch,omitempty"`
}

// Verdict returns the verdict configured for an outcome.
func (r PolicyRule) Verdict(o MatchOutcome) Verdict {
	switch o {
	case OutcomeNotProvided:
		return r.NotProvided
	case OutcomeNotChecked:
		return r.NotChecked
	case OutcomeMatched:
		return r.Matched
	case OutcomeNotMatched:
		return r.NotMatched
	case OutcomePartialMatch:
		return r.PartialMatch
	}
	return ""
}

// Merge returns r with every set verdict of override applied.
func (r PolicyRule) Merge(override PolicyRule) PolicyRule {
	pick := func(base, o Verdict) Verdict {
		if o == "" {
			return base
		}
		return o
	}
	return PolicyRule{
		NotProvided:  pick(r.NotProvided, override.NotProvided),
		NotChecked:   pick(r.NotChecked, override.NotChecked),
		Matched:      pick(r.Matched, override.Matched),
		NotMatched:   pick(r.NotMatched, override.NotMatched),
		PartialMatch: pick(r.PartialMatch, override.PartialMatch),
	}
}

// Validate rejects verdicts other than accept, reject or unset.
func (r PolicyRule) Validate() error {
	for _, v := range []struct {
		outcome MatchOutcome
		verdict Verdict
	}{
		{OutcomeNotProvided, r.NotProvided},
		{OutcomeNotChecked, r.NotChecked},
		{OutcomeMatched, r.Matched},
		{OutcomeNotMatched, r.NotMatched},
		{OutcomePartialMatch, r.PartialMatch},
	} {
		switch v.verdict {
		case "", VerdictAccept, VerdictReject:
		default:
			return fmt.Errorf("%w: %s=%q", ErrInvalidPolicy, v.outcome, v.verdict)
		}
	}
	return nil
}

// ExtendedPolicy holds the three independent CV2/AVS decision tables.
// As an option it carries overrides; zero verdicts keep the table default.
type ExtendedPolicy struct {
	CV2      PolicyRule `json:"cv2_policy"`
	Postcode PolicyRule `json:"postcode_policy"`
	Address  PolicyRule `json:"address_policy"`
}

// DefaultExtendedPolicy returns the default decision tables.
// CV2 only accepts a full match; postcode and address only reject a mismatch.
func DefaultExtendedPolicy() ExtendedPolicy {
	return ExtendedPolicy{
		CV2: PolicyRule{
			NotProvided:  VerdictReject,
			NotChecked:   VerdictReject,
			Matched:      VerdictAccept,
			NotMatched:   VerdictReject,
			PartialMatch: VerdictReject,
		},
		Postcode: PolicyRule{
			NotProvided:  VerdictAccept,
			NotChecked:   VerdictAccept,
			Matched:      VerdictAccept,
			NotMatched:   VerdictReject,
			PartialMatch: VerdictAccept,
		},
		Address: PolicyRule{
			NotProvided:  VerdictAccept,
			NotChecked:   VerdictAccept,
			Matched:      VerdictAccept,
			NotMatched:   VerdictReject,
			PartialMatch: VerdictAccept,
		},
	}
}

// Validate checks every table.
func (p ExtendedPolicy) Validate() error {
	if err := p.CV2.Validate(); err != nil {
		return fmt.Errorf("cv2_policy: %w", err)
	}
	if err := p.Postcode.Validate(); err != nil {
		return fmt.Errorf("postcode_policy: %w", err)
	}
	if err := p.Address.Validate(); err != nil {
		return fmt.Errorf("address_policy: %w", err)
	}
	return nil
}

// Merge applies overrides table by table, outcome by outcome.
func (p ExtendedPolicy) Merge(overrides ExtendedPolicy) ExtendedPolicy {
	return ExtendedPolicy{
		CV2:      p.CV2.Merge(overrides.CV2),
		Postcode: p.Postcode.Merge(overrides.Postcode),
		Address:  p.Address.Merge(overrides.Address),
	}
}

// ResolvePolicy returns the default tables with overrides applied.
func ResolvePolicy(overrides ExtendedPolicy) ExtendedPolicy {
	return DefaultExtendedPolicy().Merge(overrides)
}
