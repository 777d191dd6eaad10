// Package client implements the short-lived process side of the
// protocol: connect or spawn, register root PIDs, and drive every
// received TickResult through a Formatter to an output stream until
// timeout, EOF, or a write failure.
package client
