package tui

import "errors"

// ErrMissingSession is returned when no answer session is provided.
var ErrMissingSession = errors.New("tui: answer session is required")
