// Package bootstrap runs the service lifecycle: validate config, start the
// registered components in order, print a startup summary, wait for a
// signal and stop everything in reverse within a graceful timeout.
package bootstrap
