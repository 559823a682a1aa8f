package service

import (
	"context"
	"fmt"
	"testing"

	"internal-wallet-service/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestLogger() zerolog.Logger {
	return zerolog.Nop()
}

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, expectedCode, appErr.Code)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// decimalEq matches decimals by value rather than representation.
type decimalEq struct{ want decimal.Decimal }

func decEq(s string) gomock.Matcher {
	return decimalEq{want: dec(s)}
}

func (m decimalEq) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalEq) String() string {
	return fmt.Sprintf("is decimal %s", m.want)
}

// runUnit makes a mocked Transactor execute fn in place.
func runUnit(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
