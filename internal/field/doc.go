// Package field parses and evaluates field specification strings: the
// small expression language behind the client's -f/--field flag. A
// Spec turns one TickResult (a SubtreeLoad vector plus the logical CPU
// count) into zero or more textual pieces joined by the caller's
// separator.
package field
