// Package mcp provides an MCP (Model Context Protocol) server adapter for policylens.
// It lets AI assistants ask questions about the loaded policy document and
// read the answer journal.
package mcp

import "errors"

// ErrMissingSession is returned when no answer session is provided.
var ErrMissingSession = errors.New("mcp: answer session is required")
