/*
Package faults defines the error markers used to classify failures across
sources, transcription, summarization and delivery.
*/
package faults

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSource        = errors.New("source failure")
	ErrConfiguration = errors.New("configuration missing")
	ErrExternalTool  = errors.New("external tool error")
	ErrCapability    = errors.New("capability failure")
	ErrTimeout       = errors.New("timeout")
	ErrNotFound      = errors.New("not found")
)

// Wrap builds an error message that includes stage context while tagging it
// with marker for later classification. A nil marker is treated as
// ErrCapability.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrCapability
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Disabled reports whether err signals an absent configuration, which callers
// log and treat as a no-op rather than a failure.
func Disabled(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// Timeout reports whether err was caused by a deadline.
func Timeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "unknown failure"
	}
	return strings.Join(parts, ": ")
}
