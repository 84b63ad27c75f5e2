package domain

import (
	"fmt"
	"strings"
)

// FlowType identifies which login flow the user picked on the options screen.
type FlowType string

const (
	FlowNone      FlowType = ""           // Nothing chosen yet
	FlowSocial    FlowType = "SOCIAL"     // Third-party identity provider
	FlowEmailPass FlowType = "EMAIL_PASS" // Email and password
)

// Valid reports whether f is one of the selectable flow types.
func (f FlowType) Valid() bool {
	return f == FlowSocial || f == FlowEmailPass
}

// Option labels presented on the ChooseFlow screen, in display order.
const (
	OptionFacebook      = "facebook"
	OptionGoogle        = "Google"
	OptionEmailPassword = "Email-password"
)

// DefaultOptions returns a fresh copy of the options shown on the ChooseFlow screen.
func DefaultOptions() []string {
	return []string{OptionFacebook, OptionGoogle, OptionEmailPassword}
}

// ParseOption maps an option label to the flow type it selects.
// Matching is case-insensitive.
func ParseOption(option string) (FlowType, error) {
	switch strings.ToLower(strings.TrimSpace(option)) {
	case strings.ToLower(OptionFacebook), strings.ToLower(OptionGoogle):
		return FlowSocial, nil
	case strings.ToLower(OptionEmailPassword):
		return FlowEmailPass, nil
	}
	return FlowNone, fmt.Errorf("unknown login option %q", option)
}

// FilledData is an immutable snapshot of everything the user has entered.
// Nil pointers mean "not supplied yet". Use the With* methods to derive
// a new snapshot; never modify a shared value in place.
type FilledData struct {
	FlowType       FlowType `json:"flow_type,omitempty"`
	Email          *string  `json:"email,omitempty"`
	Password       *string  `json:"password,omitempty"`
	AgeVerified    bool     `json:"age_verified"`
	TermsConfirmed bool     `json:"terms_confirmed"`
	UserID         *string  `json:"user_id,omitempty"`
}

// Empty returns the snapshot a brand new session starts from.
func Empty() FilledData {
	return FilledData{}
}

// WithFlowType returns a copy with the flow type set.
func (d FilledData) WithFlowType(f FlowType) FilledData {
	d.FlowType = f
	return d
}

// WithEmail returns a copy with the email set.
func (d FilledData) WithEmail(email string) FilledData {
	d.Email = &email
	return d
}

// WithCredentials returns a copy carrying the password and the user ID
// obtained from a successful login.
func (d FilledData) WithCredentials(password, userID string) FilledData {
	d.Password = &password
	d.UserID = &userID
	return d
}

// WithAgeVerified returns a copy with the age check flag set.
func (d FilledData) WithAgeVerified(verified bool) FilledData {
	d.AgeVerified = verified
	return d
}

// WithTermsConfirmed returns a copy with the terms flag set.
func (d FilledData) WithTermsConfirmed(confirmed bool) FilledData {
	d.TermsConfirmed = confirmed
	return d
}

// HasFlowType reports whether a flow was chosen.
func (d FilledData) HasFlowType() bool { return d.FlowType != FlowNone }

// HasEmail reports whether an email was accepted.
func (d FilledData) HasEmail() bool { return d.Email != nil }

// HasPassword reports whether a password was recorded.
func (d FilledData) HasPassword() bool { return d.Password != nil }

// HasUserID reports whether a login completed.
func (d FilledData) HasUserID() bool { return d.UserID != nil }

// Clone returns a deep copy so the caller can hand it to code that keeps it.
func (d FilledData) Clone() FilledData {
	out := d
	out.Email = clonePtr(d.Email)
	out.Password = clonePtr(d.Password)
	out.UserID = clonePtr(d.UserID)
	return out
}

// Redacted returns a copy safe for logs: the password is masked.
func (d FilledData) Redacted() FilledData {
	out := d.Clone()
	if out.Password != nil {
		masked := "***"
		out.Password = &masked
	}
	return out
}

// String renders the snapshot without exposing the password.
func (d FilledData) String() string {
	return fmt.Sprintf("FilledData{flow=%q email=%s password=%t age=%t terms=%t user=%s}",
		d.FlowType, strOrNone(d.Email), d.HasPassword(), d.AgeVerified, d.TermsConfirmed, strOrNone(d.UserID))
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func strOrNone(s *string) string {
	if s == nil {
		return "<none>"
	}
	return fmt.Sprintf("%q", *s)
}
