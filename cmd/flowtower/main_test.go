package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/matzehuels/flowtower/pkg/errors"
)

func TestExitCode(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	bg := context.Background()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want int
	}{
		{"ok", bg, nil, 0},
		{"bad mode", bg, errors.New(errors.ErrCodeInvalidMode, "mode %q", "diagonal"), 2},
		{"wrapped bad graph", bg, fmt.Errorf("parse: %w", errors.New(errors.ErrCodeInvalidGraph, "no start")), 2},
		{"missing file", bg, errors.New(errors.ErrCodeFileNotFound, "order.yaml"), 1},
		{"plain", bg, fmt.Errorf("disk full"), 1},
		{"interrupted", cancelled, context.Canceled, 130},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.ctx, tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
