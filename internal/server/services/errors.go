package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/samber/oops"
)

// reject builds a client-caused failure of the given kind.
func reject(code string, kind error, kv ...any) error {
	return oops.Code(code).With(kv...).Wrap(kind)
}

// failure wraps an unexpected error. Errors that already carry an upload
// kind keep it; everything else becomes common.ErrorInternal.
func failure(code string, err error, kv ...any) error {
	if !errors.Is(err, common.ErrUploadFailed) {
		err = fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return oops.Code(code).With(kv...).Wrap(err)
}
