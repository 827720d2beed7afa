package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/faizi-7/graveyard-back/internal/domain/errs"
	"github.com/faizi-7/graveyard-back/pkg/helpers"
)

func TestTokenError(t *testing.T) {
	cases := []struct {
		err  error
		kind errs.Kind
		msg  string
	}{
		{fmt.Errorf("%w: exp", helpers.ErrTokenExpired), errs.KindUnauthorized, "token has expired"},
		{helpers.ErrTokenInvalid, errs.KindUnauthorized, "invalid token"},
		{helpers.ErrSigningKeyMissing, errs.KindInternal, "token signing key is missing"},
		{errors.New("hmac failed"), errs.KindInternal, "unable to sign token"},
	}
	for _, tc := range cases {
		err := tokenError(tc.err)
		assert.True(t, errs.Is(err, tc.kind), "%v", tc.err)
		var e *errs.Error
		if assert.ErrorAs(t, err, &e) {
			assert.Equal(t, tc.msg, e.Message)
		}
		assert.ErrorIs(t, err, tc.err)
	}
}
