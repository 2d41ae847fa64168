package github

import (
	"context"
	"errors"
	"net/http"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
)

// genericFailure is shown when the provider's error body carries no message.
const genericFailure = "API Request Failed"

// wrapError converts a go-github error into a *model.Error whose Message is
// the provider's own text. 401 maps to auth, 404 to not_found.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &model.Error{Kind: model.KindProvider, Op: op, Message: err.Error(), Err: err}
	}

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return &model.Error{Kind: model.KindProvider, Op: op, Message: messageOr(rateErr.Message), Err: err}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &model.Error{Kind: model.KindProvider, Op: op, Message: messageOr(abuseErr.Message), Err: err}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		kind := model.KindProvider
		if ghErr.Response != nil {
			switch ghErr.Response.StatusCode {
			case http.StatusUnauthorized:
				kind = model.KindAuth
			case http.StatusNotFound:
				kind = model.KindNotFound
			}
		}
		return &model.Error{Kind: kind, Op: op, Message: messageOr(ghErr.Message), Err: err}
	}

	return &model.Error{Kind: model.KindProvider, Op: op, Message: err.Error(), Err: err}
}

func messageOr(msg string) string {
	if msg == "" {
		return genericFailure
	}
	return msg
}
