/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package gateway

import (
	"context"
	"time"

	"github.com/fabric-rest/assetgw/common/metrics"
	"github.com/hyperledger/fabric-gateway/pkg/client"
	"github.com/pkg/errors"
)

var (
	callDuration = metrics.HistogramOpts{
		Namespace:  "ledger",
		Name:       "call_duration",
		Help:       "The time to complete a ledger call, including commit when waited for.",
		LabelNames: []string{"op", "transaction", "kind"},
		Buckets:    []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}
	callsCompleted = metrics.CounterOpts{
		Namespace:  "ledger",
		Name:       "calls_completed",
		Help:       "The number of completed ledger calls by outcome.",
		LabelNames: []string{"op", "transaction", "kind"},
	}
)

type ledgerMetrics struct {
	CallDuration   metrics.Histogram
	CallsCompleted metrics.Counter
}

func newLedgerMetrics(p metrics.Provider) *ledgerMetrics {
	return &ledgerMetrics{
		CallDuration:   p.NewHistogram(callDuration),
		CallsCompleted: p.NewCounter(callsCompleted),
	}
}

func (m *ledgerMetrics) observe(op, transaction string, startTime time.Time, err error) {
	kind := "ok"
	if err != nil {
		kind = string(Classify(err))
	}
	m.CallDuration.With("op", op, "transaction", transaction, "kind", kind).Observe(time.Since(startTime).Seconds())
	m.CallsCompleted.With("op", op, "transaction", transaction, "kind", kind).Add(1)
}

type contract struct {
	contract  *client.Contract
	channel   string
	chaincode string
	metrics   *ledgerMetrics
}

func (c *contract) Evaluate(ctx context.Context, name string, args ...string) (result []byte, err error) {
	startTime := time.Now()
	defer func() { c.metrics.observe(OpEvaluate, name, startTime, err) }()

	result, err = c.contract.EvaluateWithContext(ctx, name, client.WithArguments(args...))
	if err != nil {
		return nil, c.fail(OpEvaluate, name, "", err)
	}

	logger.Debugw("Evaluated transaction", "channel", c.channel, "chaincode", c.chaincode, "transaction", name)
	return result, nil
}

func (c *contract) Submit(ctx context.Context, name string, opts SubmitOptions, args ...string) (result []byte, err error) {
	startTime := time.Now()
	defer func() { c.metrics.observe(OpSubmit, name, startTime, err) }()

	proposal, err := c.contract.NewProposal(name, client.WithArguments(args...))
	if err != nil {
		return nil, c.fail(OpSubmit, name, "", err)
	}
	txID := proposal.TransactionID()

	transaction, err := proposal.EndorseWithContext(ctx)
	if err != nil {
		return nil, c.fail(OpSubmit, name, txID, err)
	}
	result = transaction.Result()

	commit, err := transaction.SubmitWithContext(ctx)
	if err != nil {
		return nil, c.fail(OpSubmit, name, txID, err)
	}

	if !opts.WaitForCommit {
		logger.Debugw("Submitted transaction without waiting for commit", "channel", c.channel, "chaincode", c.chaincode, "transaction", name, "txID", txID)
		return result, nil
	}

	status, err := commit.StatusWithContext(ctx)
	if err != nil {
		return nil, c.fail(OpSubmit, name, txID, err)
	}
	if !status.Successful {
		err := errors.Errorf("transaction %s failed to commit with status code %d (%s)", status.TransactionID, int32(status.Code), status.Code)
		return nil, c.fail(OpSubmit, name, txID, &Error{Kind: KindCommit, TransactionID: status.TransactionID, Err: err})
	}

	logger.Debugw("Committed transaction", "channel", c.channel, "chaincode", c.chaincode, "transaction", name, "txID", txID, "block", status.BlockNumber)
	return result, nil
}

// fail wraps err into an *Error and logs its classification.
func (c *contract) fail(op, name, txID string, err error) error {
	e := newError(op, name, txID, err)
	logger.Warnw("Ledger call failed",
		"op", op,
		"channel", c.channel,
		"chaincode", c.chaincode,
		"transaction", name,
		"txID", e.TransactionID,
		"kind", e.Kind,
		"code", e.Code,
		"details", e.Details,
		"error", err,
	)
	return e
}
