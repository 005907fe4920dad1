// Package cli implements the basekit command-line client.
//
// Commands cover the full session lifecycle: login/logout/whoami,
// password-reset request and confirmation, user administration,
// reset-token purging, and watch, which holds a session open and
// reacts to server-side revocation the way an embedded UI would.
//
// Configuration comes from internal/client/config (defaults, optional
// YAML file, environment); the --server persistent flag overrides the
// server URL for one invocation. Sessions are cached in the OS keyring
// between invocations.
package cli
