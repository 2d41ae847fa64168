package application

import (
	"fmt"

	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
)

func validationError(op, format string, args ...any) error {
	return &model.Error{Kind: model.KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// providerError keeps an already-tagged error and tags anything else as a
// provider failure of op.
func providerError(op string, err error) error {
	if err == nil || model.KindOf(err) != "" {
		return err
	}
	return &model.Error{Kind: model.KindProvider, Op: op, Message: err.Error(), Err: err}
}

// withOp returns err retagged with op, preserving kind and message.
func withOp(op string, err error) error {
	kind := model.KindOf(err)
	if kind == "" {
		kind = model.KindProvider
	}
	return &model.Error{Kind: kind, Op: op, Message: err.Error(), Err: err}
}
