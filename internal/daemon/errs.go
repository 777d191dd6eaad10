package daemon

import "errors"

// ErrShutdown is returned by Run when the sampling task fails outright
// and the daemon requests its own shutdown rather than keep serving
// clients against a broken accounting interface.
var ErrShutdown = errors.New("daemon: sampling task failed, shutting down")
