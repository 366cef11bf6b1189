package rpc

import (
	"context"
	"errors"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Status converts a domain error into a gRPC status error.
func Status(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(Code(err), message(err))
}

func Code(err error) codes.Code {
	switch {
	case domain.IsValidation(err):
		return codes.InvalidArgument
	case errors.Is(err, domain.ErrAuthRequired), errors.Is(err, domain.ErrInvalidCredential):
		return codes.Unauthenticated
	case errors.Is(err, domain.ErrForbidden):
		return codes.PermissionDenied
	case errors.Is(err, domain.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, domain.ErrSoldOut):
		return codes.ResourceExhausted
	case errors.Is(err, domain.ErrAlreadyPaid), errors.Is(err, domain.ErrSeatTaken), errors.Is(err, domain.ErrEmailTaken):
		return codes.AlreadyExists
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrPaymentDeclined):
		return codes.FailedPrecondition
	case errors.Is(err, domain.ErrPaymentInProgress):
		return codes.Aborted
	case domain.IsStoreError(err):
		return codes.Unavailable
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}
	return codes.Internal
}

func message(err error) string {
	switch Code(err) {
	case codes.Internal:
		return "internal error"
	case codes.Unavailable:
		return "storage is temporarily unavailable, retry later"
	}
	return err.Error()
}
