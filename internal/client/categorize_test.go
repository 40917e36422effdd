package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ""},
		{"deadline", context.DeadlineExceeded, ErrorCategoryTimeout},
		{"canceled", context.Canceled, ErrorCategoryTimeout},
		{"invalid key", fmt.Errorf("%w: bad", ErrInvalidAPIKey), ErrorCategoryInvalidAPIKey},
		{"not found", fmt.Errorf("%w: nope", ErrLocationNotFound), ErrorCategoryLocationNotFound},
		{"rate limited", ErrRateLimited, ErrorCategoryRateLimited},
		{"upstream", fmt.Errorf("%w: HTTP 502", ErrUpstreamFailure), ErrorCategoryUpstream},
		{"connection", errors.New("dial tcp: connection refused"), ErrorCategoryNetwork},
		{"dns", errors.New("lookup api.weatherapi.com: no such host"), ErrorCategoryNetwork},
		{"parse", errors.New("parse response: unexpected end of JSON input"), ErrorCategoryParsing},
		{"unknown", errors.New("something else"), ErrorCategoryUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CategorizeError(tc.err); got != tc.want {
				t.Errorf("CategorizeError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
