// Package cli implements the checklist command line with cobra.
//
// Every subcommand builds an app.App through Env.NewApp, so tests swap in an
// in-memory service. Exit codes:
//
//   - 0: success, including a declined delete
//   - 1: usage errors and anything unclassified
//   - 2: configuration errors (app.ErrConfig)
//   - 3: remote failures (session.ErrFetch, mutation.ErrMutation)
package cli
