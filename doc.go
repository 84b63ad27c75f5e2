/*
Package stepwise is a data-driven flow engine for multi-step login and onboarding wizards.

The next screen is never chosen by the screen before it. Instead the engine keeps an immutable
snapshot of what the user has entered so far (FilledData) and derives the current Step from it
with an ordered list of rules, the first matching rule wins. The asynchronous login call is tracked
as an Outcome (Loading, Success, Error) and combined with the step into a single UI state stream.

# Concept

The engine is a single-writer actor. Every input (a chosen option, an email, a password, a
navigation report) is queued and applied atomically, and each applied input produces exactly one
UI state emission. A host (terminal runner, HTTP server, your app) renders those emissions and feeds
user input back in.

  - Latest submission wins: submitting a password again cancels the login in flight and any late
    result of the old attempt is discarded.
  - Reconciliation: when the navigation layer moves on its own (the user pressed Back), the host
    reports the new location with OnExternalNavigation and the engine republishes the matching
    step without touching the data.
  - Persistence: Serialize returns the FilledData, Restore (or WithInitialData) brings a session
    back; the step is always recomputed, never stored.

# Usage

	auth := ports.AuthenticatorFunc(func(ctx context.Context, email, password string) (string, error) {
		return myBackend.Login(ctx, email, password)
	})

	eng, err := stepwise.New(stepwise.WithAuthenticator(auth))
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	for state := range eng.Subscribe(ctx) {
		switch step := state.Step().(type) {
		case domain.ChooseFlow:
			_ = eng.SelectOption(ctx, pick(step.Options))
		case domain.EnterEmail:
			_ = eng.SubmitEmail(ctx, ask("email"))
		case domain.EnterPassword:
			if !state.IsLoading() {
				_ = eng.SubmitPassword(ctx, ask("password"))
			}
		case domain.Done:
			return
		}
	}
*/
package stepwise
