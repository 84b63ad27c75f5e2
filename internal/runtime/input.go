package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
)

// SelectFlow records the chosen flow type and recomputes the step.
// An out-of-set flow type is a contract violation.
func (e *Engine) SelectFlow(ctx context.Context, flow domain.FlowType) error {
	return e.submit(ctx, "SelectFlow", func() error {
		if !flow.Valid() {
			return &domain.ContractViolation{Op: "SelectFlow", Reason: fmt.Sprintf("flow type %q is not selectable", flow)}
		}
		e.setData(e.data.WithFlowType(flow))
		e.resolveAndPublish()
		return nil
	})
}

// SelectOption is SelectFlow for one of the labels offered by ChooseFlow.
// An unknown label is a contract violation.
func (e *Engine) SelectOption(ctx context.Context, option string) error {
	return e.submit(ctx, "SelectOption", func() error {
		flow, err := domain.ParseOption(option)
		if err != nil {
			return &domain.ContractViolation{Op: "SelectOption", Reason: err.Error()}
		}
		e.setData(e.data.WithFlowType(flow))
		e.resolveAndPublish()
		return nil
	})
}

// SubmitEmail validates raw locally. A valid address is stored and the step
// recomputed; an invalid one only changes the status to Error(ErrInvalidEmail).
func (e *Engine) SubmitEmail(ctx context.Context, raw string) error {
	return e.submit(ctx, "SubmitEmail", func() error {
		if !strings.Contains(raw, "@") {
			e.logger.Debug("email rejected")
			e.setStatus(domain.Failure(domain.Unit{}, domain.ErrInvalidEmail))
			e.publish()
			return nil
		}

		// Credentials from an in-flight login belong to the previous address.
		if e.data.Email != nil && *e.data.Email != raw {
			e.abandonLogin("email changed")
		}

		e.setData(e.data.WithEmail(raw))
		e.setStatus(domain.Success(domain.Unit{}))
		e.resolveAndPublish()
		return nil
	})
}

// SubmitPassword emits Loading and starts a login attempt with the stored
// email. Calling it without an email on record is a contract violation.
// A newer submission supersedes any attempt still in flight.
func (e *Engine) SubmitPassword(ctx context.Context, raw string) error {
	return e.submit(ctx, "SubmitPassword", func() error {
		if !e.data.HasEmail() {
			return &domain.ContractViolation{Op: "SubmitPassword", Reason: "no email on record"}
		}
		e.startLogin(*e.data.Email, raw)
		return nil
	})
}

// VerifyAge records the age stated on the age screen. It is a contract
// violation before a login completed or when no age check is configured.
// An age below the minimum is reported as ErrUnderage and changes nothing.
func (e *Engine) VerifyAge(ctx context.Context, age int) error {
	return e.submit(ctx, "VerifyAge", func() error {
		if !e.data.HasUserID() {
			return &domain.ContractViolation{Op: "VerifyAge", Reason: "no completed login"}
		}
		step, ok := e.resolver.StepFor(domain.NavVerifyAge, e.data)
		check, isAge := step.(domain.VerifyMinAge)
		if !ok || !isAge {
			return &domain.ContractViolation{Op: "VerifyAge", Reason: "no age check configured"}
		}
		if age < check.MinAge {
			e.setStatus(domain.Failure(domain.Unit{}, domain.ErrUnderage))
			e.publish()
			return nil
		}
		e.setData(e.data.WithAgeVerified(true))
		e.setStatus(domain.Success(domain.Unit{}))
		e.resolveAndPublish()
		return nil
	})
}

// ConfirmTerms records the user's answer on the terms screen. Calling it
// before a login completed is a contract violation.
func (e *Engine) ConfirmTerms(ctx context.Context, accepted bool) error {
	return e.submit(ctx, "ConfirmTerms", func() error {
		if !e.data.HasUserID() {
			return &domain.ContractViolation{Op: "ConfirmTerms", Reason: "no completed login"}
		}
		if !accepted {
			e.setStatus(domain.Failure(domain.Unit{}, domain.ErrTermsDeclined))
			e.publish()
			return nil
		}
		e.setData(e.data.WithTermsConfirmed(true))
		e.setStatus(domain.Success(domain.Unit{}))
		e.resolveAndPublish()
		return nil
	})
}

// Serialize returns a copy of the durable state.
func (e *Engine) Serialize(ctx context.Context) (domain.FilledData, error) {
	// The loop may run the command after ctx ends, so the copy is only
	// handed over through the channel and read on success.
	out := make(chan domain.FilledData, 1)
	err := e.submit(ctx, "Serialize", func() error {
		out <- e.data.Clone()
		return nil
	})
	if err != nil {
		return domain.FilledData{}, err
	}
	return <-out, nil
}

// Restore replaces the filled data wholesale and recomputes the step.
// Any login in flight is abandoned and the status resets to Success.
func (e *Engine) Restore(ctx context.Context, data domain.FilledData) error {
	restored := data.Clone()
	return e.submit(ctx, "Restore", func() error {
		e.abandonLogin("restored")
		e.setData(restored)
		e.setStatus(domain.Success(domain.Unit{}))
		e.resolveAndPublish()
		return nil
	})
}

// Subscribe returns the combined status+step stream. The latest emission is
// replayed immediately; a slow reader only ever sees the newest pending
// emission. The channel closes when ctx ends or the engine stops.
func (e *Engine) Subscribe(ctx context.Context) <-chan domain.UIState {
	return e.hub.subscribe(ctx)
}

// Current returns the latest emission.
func (e *Engine) Current() domain.UIState {
	return e.hub.current()
}
