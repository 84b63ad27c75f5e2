/*
Package runner drives a Stepwise engine from a terminal or any line-based
stream.

It renders every UI state through a pluggable IOHandler, maps the user's
answers onto engine operations, keeps a navigation back-stack so "back"
reconciles the engine, and optionally persists the session while it runs.

# Key Components

  - Runner: the interaction loop.
  - IOHandler: decouples how states are shown and answers are read.
  - TextHandler: interactive CLI usage, with hidden password input on a TTY.
  - JSONHandler: one JSON object per line, for scripts and other programs.

# Usage

	r := runner.NewRunner(
		runner.WithEngine(engine),
		runner.WithSessions(manager),
		runner.WithSessionID("user-1"),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
