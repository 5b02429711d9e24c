// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package notification

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLifetime(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    time.Duration
		wantErr bool
	}{
		{name: "nil uses default", in: nil, want: DefaultLifetime},
		{name: "int", in: 60, want: time.Minute},
		{name: "int64", in: int64(3600), want: time.Hour},
		{name: "zero", in: 0, want: 0},
		{name: "integral float", in: float64(120), want: 2 * time.Minute},
		{name: "json number", in: json.Number("30"), want: 30 * time.Second},
		{name: "numeric string", in: "86400", want: 24 * time.Hour},
		{name: "padded string", in: " 10 ", want: 10 * time.Second},
		{name: "word", in: "abc", wantErr: true},
		{name: "decimal string", in: "1.5", wantErr: true},
		{name: "decimal float", in: 1.5, wantErr: true},
		{name: "negative", in: -1, wantErr: true},
		{name: "negative string", in: "-10", wantErr: true},
		{name: "bool", in: true, wantErr: true},
		{name: "empty string", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLifetime(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLifetime_Message(t *testing.T) {
	_, err := ParseLifetime("abc")
	assert.ErrorContains(t, err, "Message lifetime has to be a non decimal number")
}
