package resolver

import (
	"github.com/aretw0/stepwise/pkg/domain"
)

// Rule pairs a guard with the step it produces.
// NavID names the step Build returns; StepFor uses it to rebuild a step for a
// navigation location without evaluating the guard.
type Rule struct {
	Name  string
	NavID domain.NavID
	When  func(domain.FilledData) bool
	Build func(domain.FilledData) domain.Step
}

// Resolver maps FilledData to the step that should be shown.
// It holds no state besides its immutable rule list and is safe for concurrent use.
type Resolver struct {
	rules []Rule
}

// Option configures a Resolver built by New.
type Option func(*config)

type config struct {
	termsURL string
	minAge   int
}

// WithMinAge inserts an age check after a successful login. Values of zero
// or less disable it.
func WithMinAge(age int) Option {
	return func(c *config) {
		c.minAge = age
	}
}

// WithTerms inserts a terms-confirmation screen between a successful login
// and the terminal step.
func WithTerms(url string) Option {
	return func(c *config) {
		c.termsURL = url
	}
}

// Default returns the standard five-rule chain.
func Default() *Resolver {
	return New()
}

// New builds the rule chain. Without options it is identical to Default.
func New(opts ...Option) *Resolver {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	rules := []Rule{
		{
			Name:  "choose_flow",
			NavID: domain.NavOptions,
			When:  func(d domain.FilledData) bool { return !d.HasFlowType() },
			Build: func(domain.FilledData) domain.Step { return domain.ChooseFlow{Options: domain.DefaultOptions()} },
		},
		{
			Name:  "enter_email",
			NavID: domain.NavEmail,
			When:  func(d domain.FilledData) bool { return !d.HasEmail() },
			Build: func(d domain.FilledData) domain.Step { return domain.EnterEmail{Prefill: d.Clone().Email} },
		},
		{
			Name:  "enter_password",
			NavID: domain.NavPassword,
			When:  func(d domain.FilledData) bool { return !d.HasPassword() },
			Build: func(domain.FilledData) domain.Step { return domain.EnterPassword{} },
		},
	}

	if cfg.minAge > 0 {
		minAge := cfg.minAge
		rules = append(rules, Rule{
			Name:  "verify_age",
			NavID: domain.NavVerifyAge,
			When:  func(d domain.FilledData) bool { return d.HasUserID() && !d.AgeVerified },
			Build: func(domain.FilledData) domain.Step { return domain.VerifyMinAge{MinAge: minAge} },
		})
	}

	if cfg.termsURL != "" {
		url := cfg.termsURL
		rules = append(rules, Rule{
			Name:  "confirm_terms",
			NavID: domain.NavTerms,
			When:  func(d domain.FilledData) bool { return d.HasUserID() && !d.TermsConfirmed },
			Build: func(domain.FilledData) domain.Step { return domain.ConfirmTerms{TermsURL: url} },
		})
	}

	rules = append(rules,
		Rule{
			Name:  "done",
			NavID: domain.NavEnd,
			When:  func(d domain.FilledData) bool { return d.HasUserID() },
			Build: func(domain.FilledData) domain.Step { return domain.Done{} },
		},
		// Password present but no user yet: login in flight or retryable.
		Rule{
			Name:  "password_fallback",
			NavID: domain.NavPassword,
			When:  func(domain.FilledData) bool { return true },
			Build: func(domain.FilledData) domain.Step { return domain.EnterPassword{} },
		},
	)

	return &Resolver{rules: rules}
}

// Resolve evaluates the rules top to bottom and returns the step of the first
// rule whose guard matches. Later rules are not evaluated.
func (r *Resolver) Resolve(data domain.FilledData) domain.Step {
	step, _ := r.Match(data)
	return step
}

// Match is Resolve that also reports the name of the winning rule.
func (r *Resolver) Match(data domain.FilledData) (domain.Step, string) {
	for _, rule := range r.rules {
		if rule.When(data) {
			return rule.Build(data), rule.Name
		}
	}
	// Unreachable while the chain ends with the fallback rule.
	return domain.EnterPassword{}, "password_fallback"
}

// StepFor rebuilds the step for a navigation location from the current data.
// It uses the first rule producing that NavID and ignores its guard.
// It returns false for identifiers no rule produces.
func (r *Resolver) StepFor(nav domain.NavID, data domain.FilledData) (domain.Step, bool) {
	if nav == domain.NavStart {
		return domain.Start{}, true
	}
	for _, rule := range r.rules {
		if rule.NavID == nav {
			return rule.Build(data), true
		}
	}
	return nil, false
}

// Rules returns a copy of the rule list in evaluation order.
func (r *Resolver) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}
