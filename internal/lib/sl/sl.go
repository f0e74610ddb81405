// Package sl holds small helpers for structured logging with slog.
package sl

import "log/slog"

// Err returns an slog attribute with key "error" and the error text.
//
//	log.Error("failed to award points", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
