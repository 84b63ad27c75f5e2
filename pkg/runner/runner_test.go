package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/resolver"
	"github.com/aretw0/stepwise/pkg/runner"
	"github.com/aretw0/stepwise/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, userID string, err error) *stepwise.Engine {
	t.Helper()
	eng, newErr := stepwise.New(stepwise.WithAuthenticator(
		ports.AuthenticatorFunc(func(ctx context.Context, email, password string) (string, error) {
			return userID, err
		}),
	))
	require.NoError(t, newErr)
	t.Cleanup(eng.Close)
	return eng
}

func run(t *testing.T, eng *stepwise.Engine, input string, opts ...runner.Option) string {
	t.Helper()
	var out bytes.Buffer
	opts = append([]runner.Option{
		runner.WithEngine(eng),
		runner.WithIO(strings.NewReader(input), &out),
		runner.WithHeadless(true),
	}, opts...)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, runner.NewRunner(opts...).Run(ctx))
	return out.String()
}

func TestRunner_RequiresEngine(t *testing.T) {
	err := runner.NewRunner().Run(context.Background())
	assert.ErrorIs(t, err, runner.ErrNoEngine)
}

func TestRunner_CompletesEmailPasswordFlow(t *testing.T) {
	eng := newEngine(t, "user-42", nil)

	out := run(t, eng, "3\nada@example.com\npw\n")

	assert.Contains(t, out, "How would you like to sign in?")
	assert.Contains(t, out, "3. Email-password")
	assert.Contains(t, out, "## Password")
	assert.Contains(t, out, "All set")
	assert.NotContains(t, out, "--- Stepwise")

	data, err := eng.Serialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.FlowEmailPass, data.FlowType)
	assert.Equal(t, "user-42", *data.UserID)
}

func TestRunner_OptionByLabel(t *testing.T) {
	eng := newEngine(t, "u", nil)

	run(t, eng, "GOOGLE\nada@example.com\npw\n")

	data, err := eng.Serialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.FlowSocial, data.FlowType)
}

func TestRunner_UnknownOptionIsAHint(t *testing.T) {
	eng := newEngine(t, "u", nil)

	out := run(t, eng, "7\ntwitter\n")

	assert.Contains(t, out, `Unknown option "7"`)
	assert.Contains(t, out, `Unknown option "twitter"`)
	select {
	case <-eng.Done():
		t.Fatal("engine must survive an unknown option")
	default:
	}
	assert.Equal(t, domain.NavOptions, eng.Current().Step().NavID())
}

func TestRunner_InvalidEmailShowsError(t *testing.T) {
	eng := newEngine(t, "u", nil)

	out := run(t, eng, "3\nnot-an-email\n")

	assert.Contains(t, out, "Error:")
	assert.Equal(t, domain.StatusError, eng.Current().Status)
	assert.Equal(t, domain.NavEmail, eng.Current().Step().NavID())
}

func TestRunner_LoginFailureRetries(t *testing.T) {
	eng := newEngine(t, "", errors.New("server unavailable"))

	out := run(t, eng, "3\nada@example.com\npw\n")

	assert.Contains(t, out, "Error: server unavailable")
	assert.Equal(t, domain.NavPassword, eng.Current().Step().NavID())
}

func TestRunner_AgeCheck(t *testing.T) {
	eng, err := stepwise.New(
		stepwise.WithAuthenticator(ports.AuthenticatorFunc(func(context.Context, string, string) (string, error) {
			return "u-age", nil
		})),
		stepwise.WithResolver(resolver.New(resolver.WithMinAge(18))),
	)
	require.NoError(t, err)
	t.Cleanup(eng.Close)

	out := run(t, eng, "3\nada@example.com\npw\nold enough\n16\n18\n")

	assert.Contains(t, out, "at least 18")
	assert.Contains(t, out, "Please enter your age as a number.")
	assert.Contains(t, out, "Error: below the minimum age")
	assert.Contains(t, out, "All set")

	data, err := eng.Serialize(context.Background())
	require.NoError(t, err)
	assert.True(t, data.AgeVerified)
}

func TestRunner_BackReconcilesEngine(t *testing.T) {
	eng := newEngine(t, "u", nil)
	r := runner.NewRunner(
		runner.WithEngine(eng),
		runner.WithIO(strings.NewReader("back\n3\nback\n2\nada@example.com\npw\n"), io.Discard),
		runner.WithHeadless(true),
	)

	require.NoError(t, r.Run(context.Background()))

	data, err := eng.Serialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.FlowSocial, data.FlowType)
	assert.Equal(t, []domain.NavID{domain.NavOptions, domain.NavEmail, domain.NavPassword, domain.NavEnd}, r.Navigator().History())
}

func TestRunner_NothingToGoBackTo(t *testing.T) {
	eng := newEngine(t, "u", nil)

	out := run(t, eng, "back\n")

	assert.Contains(t, out, "Nothing to go back to.")
}

func TestRunner_ExitStopsEarly(t *testing.T) {
	eng := newEngine(t, "u", nil)

	run(t, eng, "3\nexit\nada@example.com\n")

	data, err := eng.Serialize(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data.Email)
}

func TestRunner_EmailPrefillIsDefault(t *testing.T) {
	eng := newEngine(t, "u", nil)

	run(t, eng, "3\nada@example.com\nback\n\n")

	data, err := eng.Serialize(context.Background())
	require.NoError(t, err)
	require.NotNil(t, data.Email)
	assert.Equal(t, "ada@example.com", *data.Email)
	assert.Equal(t, domain.NavPassword, eng.Current().Step().NavID())
}

func TestRunner_PersistsSession(t *testing.T) {
	eng := newEngine(t, "user-7", nil)
	sessions := session.NewManager(memory.NewStore())

	run(t, eng, "3\nada@example.com\npw\n",
		runner.WithSessions(sessions),
		runner.WithSessionID("s-1"),
	)

	data, err := sessions.Load(context.Background(), "s-1")
	require.NoError(t, err)
	require.NotNil(t, data.UserID)
	assert.Equal(t, "user-7", *data.UserID)
}

func TestRunner_ContextCancelIsCleanExit(t *testing.T) {
	eng := newEngine(t, "u", nil)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	r := runner.NewRunner(runner.WithEngine(eng), runner.WithIO(pr, io.Discard))

	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunner_ReadErrorIsReported(t *testing.T) {
	eng := newEngine(t, "u", nil)
	broken := errors.New("terminal gone")
	r := runner.NewRunner(
		runner.WithEngine(eng),
		runner.WithIO(iotest.ErrReader(broken), io.Discard),
		runner.WithHeadless(true),
	)

	err := r.Run(context.Background())
	assert.ErrorIs(t, err, broken)
}

func TestRunner_JSONHandler(t *testing.T) {
	eng := newEngine(t, "u-json", nil)
	var out bytes.Buffer
	in := strings.NewReader("\"Email-password\"\n\"ada@example.com\"\npw\n")

	r := runner.NewRunner(
		runner.WithEngine(eng),
		runner.WithInputHandler(runner.NewJSONHandler(in, &out)),
	)
	require.NoError(t, r.Run(context.Background()))

	var views []runner.View
	dec := json.NewDecoder(&out)
	for {
		var raw map[string]json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			break
		}
		if _, ok := raw["nav_id"]; !ok {
			continue
		}
		var v runner.View
		b, _ := json.Marshal(raw)
		require.NoError(t, json.Unmarshal(b, &v))
		views = append(views, v)
	}

	require.NotEmpty(t, views)
	assert.Equal(t, domain.NavOptions, views[0].NavID)
	assert.Equal(t, domain.DefaultOptions(), views[0].Options)
	last := views[len(views)-1]
	assert.Equal(t, domain.NavEnd, last.NavID)
	assert.True(t, last.Terminal)
}
