/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package assets maps asset operations onto transaction functions of the
// asset-transfer chaincode.
package assets

import (
	"context"
	"fmt"

	"code.cloudfoundry.org/clock"
	"github.com/fabric-rest/assetgw/common/flogging"
	"github.com/fabric-rest/assetgw/internal/pkg/gateway"
	"github.com/pkg/errors"
)

var logger = flogging.MustGetLogger("assets")

// Transaction function names of the asset-transfer chaincode.
const (
	InitLedgerFn    = "InitLedger"
	CreateAssetFn   = "CreateAsset"
	TransferAssetFn = "TransferAsset"
	ReadAssetFn     = "ReadAsset"
	GetAllAssetsFn  = "GetAllAssets"
	UpdateAssetFn   = "UpdateAsset"
)

// TransferResult describes a completed change of ownership.
type TransferResult struct {
	AssetID  string
	OldOwner string
	NewOwner string
}

// Service performs asset operations against a contract. It holds no state
// besides its dependencies and is safe for concurrent use.
type Service struct {
	contract gateway.Contract
	clock    clock.Clock
	defaults gateway.SubmitOptions
}

// NewService returns a Service that invokes contract and takes asset
// identifiers from clock. defaults applies to writes that do not override
// the commit behaviour.
func NewService(contract gateway.Contract, clock clock.Clock, defaults gateway.SubmitOptions) *Service {
	return &Service{
		contract: contract,
		clock:    clock,
		defaults: defaults,
	}
}

// SubmitOptions returns the default submit options, with WaitForCommit
// replaced when wait is not nil.
func (s *Service) SubmitOptions(wait *bool) gateway.SubmitOptions {
	opts := s.defaults
	if wait != nil {
		opts.WaitForCommit = *wait
	}
	return opts
}

// NewAssetID returns an identifier derived from the current time in
// milliseconds. Two requests in the same millisecond get the same ID.
func (s *Service) NewAssetID() string {
	return fmt.Sprintf("asset%d", s.clock.Now().UnixMilli())
}

// InitLedger seeds the ledger with the chaincode's initial assets and
// returns the raw transaction result.
func (s *Service) InitLedger(ctx context.Context, opts gateway.SubmitOptions) ([]byte, error) {
	result, err := s.contract.Submit(ctx, InitLedgerFn, opts)
	if err != nil {
		return nil, err
	}
	logger.Infow("Initialized ledger", "waitForCommit", opts.WaitForCommit)
	return result, nil
}

// Create writes a new asset under a generated identifier and returns that
// identifier. Any ID set on asset is ignored.
func (s *Service) Create(ctx context.Context, asset Asset, opts gateway.SubmitOptions) (string, error) {
	if err := asset.validate(false); err != nil {
		return "", err
	}

	id := s.NewAssetID()
	if _, err := s.contract.Submit(ctx, CreateAssetFn, opts, id, asset.Color, asset.Size, asset.Owner, asset.Value); err != nil {
		return "", err
	}

	logger.Infow("Created asset", "assetId", id, "owner", asset.Owner, "waitForCommit", opts.WaitForCommit)
	return id, nil
}

// Transfer changes the owner of an asset and waits for the change to
// commit. The previous owner is taken from the transaction result.
func (s *Service) Transfer(ctx context.Context, assetID, newOwner string) (*TransferResult, error) {
	if err := required([2]string{"assetId", assetID}, [2]string{"newOwner", newOwner}); err != nil {
		return nil, err
	}

	opts := s.defaults
	opts.WaitForCommit = true
	result, err := s.contract.Submit(ctx, TransferAssetFn, opts, assetID, newOwner)
	if err != nil {
		return nil, err
	}

	transfer := &TransferResult{AssetID: assetID, OldOwner: string(result), NewOwner: newOwner}
	logger.Infow("Transferred asset", "assetId", assetID, "oldOwner", transfer.OldOwner, "newOwner", newOwner)
	return transfer, nil
}

// Read returns the current state of one asset.
func (s *Service) Read(ctx context.Context, assetID string) (Asset, error) {
	if err := required([2]string{"assetId", assetID}); err != nil {
		return Asset{}, err
	}

	result, err := s.contract.Evaluate(ctx, ReadAssetFn, assetID)
	if err != nil {
		return Asset{}, err
	}
	asset, err := decodeAsset(result)
	if err != nil {
		return Asset{}, errors.WithMessagef(err, "invalid %s result", ReadAssetFn)
	}
	return asset, nil
}

// List returns every asset on the ledger. The result is never nil.
func (s *Service) List(ctx context.Context) ([]Asset, error) {
	result, err := s.contract.Evaluate(ctx, GetAllAssetsFn)
	if err != nil {
		return nil, err
	}
	assets, err := decodeAssets(result)
	if err != nil {
		return nil, errors.WithMessagef(err, "invalid %s result", GetAllAssetsFn)
	}
	logger.Debugw("Listed assets", "count", len(assets))
	return assets, nil
}

// Update overwrites an existing asset.
func (s *Service) Update(ctx context.Context, asset Asset, opts gateway.SubmitOptions) error {
	if err := asset.validate(true); err != nil {
		return err
	}

	if _, err := s.contract.Submit(ctx, UpdateAssetFn, opts, asset.ID, asset.Color, asset.Size, asset.Owner, asset.Value); err != nil {
		return err
	}

	logger.Infow("Updated asset", "assetId", asset.ID, "waitForCommit", opts.WaitForCommit)
	return nil
}
