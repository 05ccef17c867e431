/*
Package runner implements the interactive loop and I/O orchestration for planning sessions.

It is the bridge between the stateless engine and a terminal or a pipe. The runner
renders the waiting session, reads one answer, hands it to the engine and persists the
result through the session manager, until the session terminates or the user leaves.

# Key Components

  - Runner: the loop. It never decides for the user: a prompt timeout only re-asks.
  - IOHandler: decouples how answers are collected (TextHandler, JSONHandler).
  - StartAndRender / NavigateAndRender: the same step for request/response clients (HTTP, MCP).

# Usage

	r := runner.NewRunner(
		runner.WithSessions(manager, "trip-1"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	final, err := r.Run(ctx, engine, state)
*/
package runner
