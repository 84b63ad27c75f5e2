package domain

import "fmt"

// NavID is the stable identifier that correlates a Step with a location
// in the host's navigation layer.
type NavID string

const (
	NavStart     NavID = "START"
	NavOptions   NavID = "OPTIONS"
	NavEmail     NavID = "EMAIL"
	NavPassword  NavID = "PASSWORD"
	NavVerifyAge NavID = "VERIFY_AGE"
	NavTerms     NavID = "TERMS"
	NavEnd       NavID = "END"
)

var knownNavIDs = map[NavID]struct{}{
	NavStart:     {},
	NavOptions:   {},
	NavEmail:     {},
	NavPassword:  {},
	NavVerifyAge: {},
	NavTerms:     {},
	NavEnd:       {},
}

// ParseNavID validates an identifier reported by the outside world.
func ParseNavID(s string) (NavID, error) {
	id := NavID(s)
	if _, ok := knownNavIDs[id]; !ok {
		return "", fmt.Errorf("unknown navigation id %q", s)
	}
	return id, nil
}

// Step is the closed set of screens the engine can ask the host to show.
// The set is sealed by the unexported marker method.
type Step interface {
	NavID() NavID
	step()
}

// Start is the placeholder shown before the first resolution.
type Start struct{}

// ChooseFlow asks the user to pick a login option.
type ChooseFlow struct {
	Options []string `json:"options"`
}

// EnterEmail asks for the email address, optionally pre-filled.
type EnterEmail struct {
	Prefill *string `json:"prefill,omitempty"`
}

// EnterPassword asks for the password. It is shown both while a login is in
// flight and after a failed login; the accompanying status tells them apart.
type EnterPassword struct{}

// VerifyMinAge asks the user to state their age; MinAge is the lowest accepted.
type VerifyMinAge struct {
	MinAge int `json:"min_age"`
}

// ConfirmTerms asks the user to accept the terms published at TermsURL.
type ConfirmTerms struct {
	TermsURL string `json:"terms_url"`
}

// Done is the terminal step.
type Done struct{}

func (Start) NavID() NavID         { return NavStart }
func (ChooseFlow) NavID() NavID    { return NavOptions }
func (EnterEmail) NavID() NavID    { return NavEmail }
func (EnterPassword) NavID() NavID { return NavPassword }
func (VerifyMinAge) NavID() NavID  { return NavVerifyAge }
func (ConfirmTerms) NavID() NavID  { return NavTerms }
func (Done) NavID() NavID          { return NavEnd }

func (Start) step()         {}
func (ChooseFlow) step()    {}
func (EnterEmail) step()    {}
func (EnterPassword) step() {}
func (VerifyMinAge) step()  {}
func (ConfirmTerms) step()  {}
func (Done) step()          {}

// SameStep compares two steps by variant only. Use it where deduplication is
// wanted; emissions themselves are distinguished by UIState.Seq.
func SameStep(a, b Step) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.NavID() == b.NavID()
}

// IsTerminal reports whether the step ends the flow.
func IsTerminal(s Step) bool {
	_, ok := s.(Done)
	return ok
}
