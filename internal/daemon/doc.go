// Package daemon implements the long-lived, single-host process that
// owns the Sampler and fans out aggregated results to every attached
// client once per tick, exiting once the last client disconnects and
// stays gone for a full tick.
package daemon
