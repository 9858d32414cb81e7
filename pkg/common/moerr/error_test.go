// Copyright 2024 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package moerr

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMoErrCode(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		err      error
		code     uint16
		expected bool
	}{
		{
			name:     "nil error is ok",
			err:      nil,
			code:     Ok,
			expected: true,
		},
		{
			name:     "nil error is not oom",
			err:      nil,
			code:     ErrOOM,
			expected: false,
		},
		{
			name:     "oom",
			err:      NewOOM(ctx),
			code:     ErrOOM,
			expected: true,
		},
		{
			name:     "invalid arg is not oom",
			err:      NewInvalidArg(ctx, "index", 3),
			code:     ErrOOM,
			expected: false,
		},
		{
			name:     "standard error",
			err:      errors.New("some error"),
			code:     ErrInternal,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsMoErrCode(tt.err, tt.code))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewInvalidArg(context.TODO(), "index", 7)
	require.Equal(t, "invalid argument index, bad value 7", err.Error())
	require.Equal(t, ErrInvalidArg, err.ErrorCode())

	err = NewBadConfigNoCtx("multiplier %d < 2", 1)
	require.Equal(t, "invalid configuration: multiplier 1 < 2", err.Error())
	require.Equal(t, err.Error(), err.Display())

	err.WithDetail("growth")
	require.Equal(t, "invalid configuration: multiplier 1 < 2: growth", err.Display())
}

func TestErrorsIs(t *testing.T) {
	err := NewOOMNoCtx()
	require.True(t, errors.Is(err, NewOOMNoCtx()))
	require.False(t, errors.Is(err, NewInternalErrorNoCtx("x")))
}

func TestConvertGoError(t *testing.T) {
	ctx := context.Background()
	require.Nil(t, ConvertGoError(ctx, nil))

	oom := NewOOM(ctx)
	require.Equal(t, oom, ConvertGoError(ctx, oom))

	require.True(t, IsMoErrCode(ConvertGoError(ctx, io.EOF), ErrInvalidState))
	require.True(t, IsMoErrCode(ConvertGoError(ctx, errors.New("boom")), ErrInternal))
}

func TestConvertPanicError(t *testing.T) {
	ctx := context.Background()
	oom := NewOOM(ctx)
	require.Equal(t, oom, ConvertPanicError(ctx, oom))

	err := ConvertPanicError(ctx, "index out of range")
	require.Equal(t, ErrInternal, err.ErrorCode())
	require.Contains(t, err.Error(), "index out of range")
}

func TestUnknownCodePanics(t *testing.T) {
	require.Panics(t, func() {
		_ = newError(Context(), 12345)
	})
}

func TestOkStopCurrRecur(t *testing.T) {
	err := GetOkStopCurrRecur()
	require.True(t, err.Succeeded())
	require.True(t, IsMoErrCode(err, OkStopCurrRecur))
	require.Equal(t, err, GetOkStopCurrRecur())
}
