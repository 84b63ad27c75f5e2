package resolver_test

import (
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

// allCombinations enumerates snapshots over every optional field.
func allCombinations() []domain.FilledData {
	var out []domain.FilledData
	flows := []domain.FlowType{domain.FlowNone, domain.FlowSocial, domain.FlowEmailPass}
	opt := []*string{nil, str("x")}
	for _, f := range flows {
		for _, e := range []*string{nil, str("a@b.com")} {
			for _, p := range opt {
				for _, u := range opt {
					for _, terms := range []bool{false, true} {
						out = append(out, domain.FilledData{FlowType: f, Email: e, Password: p, UserID: u, TermsConfirmed: terms})
					}
				}
			}
		}
	}
	return out
}

func TestResolve_NoFlowTypeAlwaysChoosesFlow(t *testing.T) {
	r := resolver.Default()
	for _, d := range allCombinations() {
		if d.HasFlowType() {
			continue
		}
		step := r.Resolve(d)
		require.IsType(t, domain.ChooseFlow{}, step, d.String())
		assert.Equal(t, []string{"facebook", "Google", "Email-password"}, step.(domain.ChooseFlow).Options)
	}
}

func TestResolve_FlowWithoutEmailAsksEmailWithoutPrefill(t *testing.T) {
	r := resolver.Default()
	for _, d := range allCombinations() {
		if !d.HasFlowType() || d.HasEmail() {
			continue
		}
		assert.Equal(t, domain.EnterEmail{Prefill: nil}, r.Resolve(d), d.String())
	}
}

func TestResolve_Chain(t *testing.T) {
	r := resolver.Default()
	base := domain.Empty().WithFlowType(domain.FlowEmailPass).WithEmail("a@b.com")

	tests := []struct {
		name string
		data domain.FilledData
		want domain.Step
	}{
		{"empty", domain.Empty(), domain.ChooseFlow{Options: domain.DefaultOptions()}},
		{"email missing", domain.Empty().WithFlowType(domain.FlowSocial), domain.EnterEmail{}},
		{"password missing", base, domain.EnterPassword{}},
		{"logged in", base.WithCredentials("pw", "u-1"), domain.Done{}},
		{"password without user falls back", domain.FilledData{FlowType: domain.FlowEmailPass, Email: str("a@b.com"), Password: str("pw")}, domain.EnterPassword{}},
		// Earlier missing fields outrank the terminal rule.
		{"user with cleared email", domain.FilledData{FlowType: domain.FlowEmailPass, Password: str("pw"), UserID: str("u-1")}, domain.EnterEmail{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.data))
		})
	}
}

func TestResolve_MatchReportsWinningRule(t *testing.T) {
	r := resolver.Default()
	fallback := domain.FilledData{FlowType: domain.FlowEmailPass, Email: str("a@b.com"), Password: str("pw")}

	_, name := r.Match(fallback)
	assert.Equal(t, "password_fallback", name)

	_, name = r.Match(domain.Empty())
	assert.Equal(t, "choose_flow", name)
}

func TestResolve_Idempotent(t *testing.T) {
	r := resolver.Default()
	for _, d := range allCombinations() {
		first := r.Resolve(d)
		second := r.Resolve(d)
		assert.Equal(t, first, second, d.String())
	}
}

func TestResolve_OptionsAreNotShared(t *testing.T) {
	r := resolver.Default()
	first := r.Resolve(domain.Empty()).(domain.ChooseFlow)
	first.Options[0] = "mutated"

	second := r.Resolve(domain.Empty()).(domain.ChooseFlow)
	assert.Equal(t, "facebook", second.Options[0])
}

func TestResolve_WithTerms(t *testing.T) {
	r := resolver.New(resolver.WithTerms("https://example.com/terms"))
	loggedIn := domain.Empty().WithFlowType(domain.FlowEmailPass).WithEmail("a@b.com").WithCredentials("pw", "u-1")

	assert.Equal(t, domain.ConfirmTerms{TermsURL: "https://example.com/terms"}, r.Resolve(loggedIn))
	assert.Equal(t, domain.Done{}, r.Resolve(loggedIn.WithTermsConfirmed(true)))
	// Without the option the terms rule does not exist.
	assert.Equal(t, domain.Done{}, resolver.Default().Resolve(loggedIn))
	assert.Len(t, resolver.Default().Rules(), 5)
	assert.Len(t, r.Rules(), 6)
}

func TestResolve_WithMinAgeBeforeTerms(t *testing.T) {
	r := resolver.New(resolver.WithMinAge(18), resolver.WithTerms("https://example.com/terms"))
	loggedIn := domain.Empty().WithFlowType(domain.FlowEmailPass).WithEmail("a@b.com").WithCredentials("pw", "u-1")

	assert.Equal(t, domain.VerifyMinAge{MinAge: 18}, r.Resolve(loggedIn))
	verified := loggedIn.WithAgeVerified(true)
	assert.Equal(t, domain.ConfirmTerms{TermsURL: "https://example.com/terms"}, r.Resolve(verified))
	assert.Equal(t, domain.Done{}, r.Resolve(verified.WithTermsConfirmed(true)))
	assert.Len(t, r.Rules(), 7)

	step, ok := r.StepFor(domain.NavVerifyAge, loggedIn)
	require.True(t, ok)
	assert.Equal(t, domain.VerifyMinAge{MinAge: 18}, step)

	// Zero disables the check.
	assert.Len(t, resolver.New(resolver.WithMinAge(0)).Rules(), 5)
}

func TestStepFor(t *testing.T) {
	r := resolver.Default()
	data := domain.Empty().WithFlowType(domain.FlowEmailPass).WithEmail("a@b.com")

	step, ok := r.StepFor(domain.NavEmail, data)
	require.True(t, ok)
	require.IsType(t, domain.EnterEmail{}, step)
	require.NotNil(t, step.(domain.EnterEmail).Prefill)
	assert.Equal(t, "a@b.com", *step.(domain.EnterEmail).Prefill)

	step, ok = r.StepFor(domain.NavOptions, data)
	require.True(t, ok)
	assert.Equal(t, domain.ChooseFlow{Options: domain.DefaultOptions()}, step)

	step, ok = r.StepFor(domain.NavStart, data)
	require.True(t, ok)
	assert.Equal(t, domain.Start{}, step)

	_, ok = r.StepFor(domain.NavTerms, data)
	assert.False(t, ok, "terms are not part of the default chain")
}
