/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package gateway

import (
	"context"
	"fmt"

	"github.com/hyperledger/fabric-gateway/pkg/client"
	gp "github.com/hyperledger/fabric-protos-go-apiv2/gateway"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Ledger operations.
const (
	OpEvaluate = "evaluate"
	OpSubmit   = "submit"
)

// Kind classifies a failed ledger call by the phase or condition that caused it.
type Kind string

const (
	KindUnknown      Kind = "unknown"
	KindEvaluate     Kind = "evaluate"
	KindEndorse      Kind = "endorse"
	KindSubmit       Kind = "submit"
	KindCommitStatus Kind = "commit-status"
	KindCommit       Kind = "commit"
	KindUnavailable  Kind = "unavailable"
	KindDeadline     Kind = "deadline"
	KindCanceled     Kind = "canceled"
)

// Error describes a failed ledger call.
type Error struct {
	// Op is OpEvaluate or OpSubmit.
	Op string
	// Transaction is the name of the invoked transaction function.
	Transaction string
	// TransactionID is empty when the failure happened before a proposal
	// was created.
	TransactionID string
	Kind          Kind
	// Code is the gRPC status code reported by the gateway, if any.
	Code codes.Code
	// Details holds the peer or orderer errors attached by the gateway.
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Transaction == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s failed (%s): %s", e.Op, e.Transaction, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, transaction, txID string, err error) *Error {
	var existing *Error
	if errors.As(err, &existing) {
		e := *existing
		e.Op, e.Transaction = op, transaction
		if e.TransactionID == "" {
			e.TransactionID = txID
		}
		if e.Kind == "" {
			e.Kind = classify(op, e.Err)
		}
		return &e
	}

	e := &Error{
		Op:            op,
		Transaction:   transaction,
		TransactionID: txID,
		Kind:          classify(op, err),
		Err:           err,
	}
	if st, ok := status.FromError(err); ok {
		e.Code = st.Code()
		e.Details = errorDetails(st)
	}
	if id := transactionID(err); id != "" {
		e.TransactionID = id
	}
	return e
}

// Classify returns the kind of a ledger call failure. Errors that do not come
// from a ledger call are KindUnknown.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return classify("", err)
}

func classify(op string, err error) Kind {
	switch {
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return KindDeadline
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Canceled:
			return KindCanceled
		case codes.DeadlineExceeded:
			return KindDeadline
		case codes.Unavailable:
			return KindUnavailable
		}
	}

	var (
		endorseErr      *client.EndorseError
		submitErr       *client.SubmitError
		commitStatusErr *client.CommitStatusError
		commitErr       *client.CommitError
	)
	switch {
	case errors.As(err, &commitErr):
		return KindCommit
	case errors.As(err, &commitStatusErr):
		return KindCommitStatus
	case errors.As(err, &submitErr):
		return KindSubmit
	case errors.As(err, &endorseErr):
		return KindEndorse
	}

	if op == OpEvaluate {
		if _, ok := status.FromError(err); ok {
			return KindEvaluate
		}
	}
	return KindUnknown
}

func transactionID(err error) string {
	var (
		endorseErr      *client.EndorseError
		submitErr       *client.SubmitError
		commitStatusErr *client.CommitStatusError
		commitErr       *client.CommitError
	)
	switch {
	case errors.As(err, &endorseErr):
		return endorseErr.TransactionID
	case errors.As(err, &submitErr):
		return submitErr.TransactionID
	case errors.As(err, &commitStatusErr):
		return commitStatusErr.TransactionID
	case errors.As(err, &commitErr):
		return commitErr.TransactionID
	}
	return ""
}

// errorDetails extracts the endpoint errors attached by the gateway.
func errorDetails(st *status.Status) []string {
	var details []string
	for _, detail := range st.Details() {
		if d, ok := detail.(*gp.ErrorDetail); ok {
			details = append(details, fmt.Sprintf("%s (%s): %s", d.GetAddress(), d.GetMspId(), d.GetMessage()))
		}
	}
	return details
}
