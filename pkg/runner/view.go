package runner

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
)

// View is a rendering-ready description of one UI state, shared by the
// handlers and by rich clients such as the HTTP API.
type View struct {
	Seq      uint64        `json:"seq"`
	NavID    domain.NavID  `json:"nav_id"`
	Status   domain.Status `json:"status"`
	Error    string        `json:"error,omitempty"`
	Options  []string      `json:"options,omitempty"`
	Prefill  string        `json:"prefill,omitempty"`
	MinAge   int           `json:"min_age,omitempty"`
	TermsURL string        `json:"terms_url,omitempty"`
	Prompt   string        `json:"prompt"`
	Terminal bool          `json:"terminal"`
}

// NewView describes s. A nil step (zero UIState) yields an empty view.
func NewView(s domain.UIState) View {
	v := View{Seq: s.Seq, Status: s.Status}
	if s.Err != nil {
		v.Error = s.Err.Error()
	}
	step := s.Step()
	if step == nil {
		return v
	}

	v.NavID = step.NavID()
	v.Terminal = domain.IsTerminal(step)
	v.Prompt = Prompt(step)
	switch st := step.(type) {
	case domain.ChooseFlow:
		v.Options = append([]string(nil), st.Options...)
	case domain.EnterEmail:
		if st.Prefill != nil {
			v.Prefill = *st.Prefill
		}
	case domain.VerifyMinAge:
		v.MinAge = st.MinAge
	case domain.ConfirmTerms:
		v.TermsURL = st.TermsURL
	}
	return v
}

// Prompt returns the markdown shown for a step.
func Prompt(step domain.Step) string {
	switch st := step.(type) {
	case domain.ChooseFlow:
		var b strings.Builder
		b.WriteString("## How would you like to sign in?\n\n")
		for i, opt := range st.Options {
			fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
		}
		return b.String()
	case domain.EnterEmail:
		if st.Prefill != nil {
			return fmt.Sprintf("## Email\n\nEnter your email address, or press Enter to keep `%s`.\n", *st.Prefill)
		}
		return "## Email\n\nEnter your email address.\n"
	case domain.EnterPassword:
		return "## Password\n\nEnter your password.\n"
	case domain.VerifyMinAge:
		return fmt.Sprintf("## Age\n\nHow old are you? You must be at least %d.\n", st.MinAge)
	case domain.ConfirmTerms:
		return fmt.Sprintf("## Terms of service\n\nPlease read %s and answer **yes** to accept.\n", st.TermsURL)
	case domain.Done:
		return "## All set\n\nYou are signed in.\n"
	}
	return ""
}

// StatusLine summarizes the action status, or "" when there is nothing to say.
func StatusLine(v View) string {
	switch v.Status {
	case domain.StatusLoading:
		return "Signing in..."
	case domain.StatusError:
		return "Error: " + v.Error
	}
	return ""
}
