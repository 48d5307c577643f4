package net

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lcx/polyproto/protocol"
)

func TestRouteFilterChain(t *testing.T) {
	tests := []struct {
		name          string
		filters       RouteFilterChain
		expectedCalls []string
		expectedError bool
		handlerError  error
	}{
		{
			name:          "Empty chain should call handler directly",
			filters:       RouteFilterChain{},
			expectedCalls: []string{"handler"},
		},
		{
			name: "Multiple filters should run in order",
			filters: RouteFilterChain{
				func(rd *RouteDelivery, f RouteHandleFunc) error {
					rd.PlayerKey += "-a"
					return f(rd)
				},
				func(rd *RouteDelivery, f RouteHandleFunc) error {
					rd.PlayerKey += "-b"
					return f(rd)
				},
			},
			expectedCalls: []string{"handler:p-a-b"},
		},
		{
			name: "Filter returning error should stop chain",
			filters: RouteFilterChain{
				func(rd *RouteDelivery, f RouteHandleFunc) error {
					return errors.New("filter error")
				},
			},
			expectedCalls: []string{},
			expectedError: true,
		},
		{
			name:          "Handler returning error should propagate",
			filters:       RouteFilterChain{},
			expectedCalls: []string{"handler"},
			expectedError: true,
			handlerError:  errors.New("handler error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := []string{}
			rd := &RouteDelivery{Packet: &protocol.Packet{Name: "Text"}, PlayerKey: "p"}
			err := tt.filters.Handle(rd, func(rd *RouteDelivery) error {
				if rd.PlayerKey == "p" {
					calls = append(calls, "handler")
				} else {
					calls = append(calls, "handler:"+rd.PlayerKey)
				}
				return tt.handlerError
			})

			assert.Equal(t, tt.expectedError, err != nil)
			assert.Equal(t, tt.expectedCalls, calls)
		})
	}
}
