// Package transport runs host commands for the hypervisor facades.
//
// An Executor runs a single Command and reports whether it succeeded along
// with its captured output. A command that ran and exited non-zero is not a
// Go error: it is a Result with Succeeded set to false. Errors are reserved
// for failures to run the command at all (missing binary, SSH dial failure,
// cancelled context).
//
// Two executors are provided:
//
//   - Local runs commands on this machine with os/exec.
//   - SSH runs commands on a remote host over golang.org/x/crypto/ssh.
package transport
