/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package assets

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Asset is the REST representation of a ledger asset. Every field is a
// string.
type Asset struct {
	ID    string `json:"assetId"`
	Color string `json:"color"`
	Size  string `json:"size"`
	Owner string `json:"owner"`
	Value string `json:"value"`
}

// wireAsset accepts both the REST field names and the field names written
// by the asset-transfer chaincode.
type wireAsset struct {
	AssetID        text `json:"assetId"`
	ID             text `json:"ID"`
	Color          text `json:"color"`
	Size           text `json:"size"`
	Owner          text `json:"owner"`
	Value          text `json:"value"`
	AppraisedValue text `json:"AppraisedValue"`
}

// UnmarshalJSON decodes an asset written either in the REST shape
// {"assetId","color","size","owner","value"} or in the chaincode shape
// {"ID","Color","Size","Owner","AppraisedValue"}. Numbers are accepted
// wherever a string is expected.
func (a *Asset) UnmarshalJSON(b []byte) error {
	var w wireAsset
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*a = Asset{
		ID:    string(w.AssetID),
		Color: string(w.Color),
		Size:  string(w.Size),
		Owner: string(w.Owner),
		Value: string(w.Value),
	}
	if a.ID == "" {
		a.ID = string(w.ID)
	}
	if a.Value == "" {
		a.Value = string(w.AppraisedValue)
	}
	return nil
}

// text is a string that may be encoded as a JSON string or number.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.Errorf("expected a string or a number but got %s", b)
	}
	*t = text(n.String())
	return nil
}

// ValidationError reports a request that cannot be sent to the ledger.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

func required(fields ...[2]string) error {
	for _, f := range fields {
		if f[1] == "" {
			return &ValidationError{Field: f[0]}
		}
	}
	return nil
}

func (a Asset) validate(withID bool) error {
	if withID {
		if err := required([2]string{"assetId", a.ID}); err != nil {
			return err
		}
	}
	return required(
		[2]string{"color", a.Color},
		[2]string{"size", a.Size},
		[2]string{"owner", a.Owner},
		[2]string{"value", a.Value},
	)
}

func decodeAsset(b []byte) (Asset, error) {
	var a Asset
	if err := json.Unmarshal(b, &a); err != nil {
		return Asset{}, errors.Wrapf(err, "failed to decode asset %q", b)
	}
	return a, nil
}

func decodeAssets(b []byte) ([]Asset, error) {
	assets := []Asset{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return assets, nil
	}
	if err := json.Unmarshal(b, &assets); err != nil {
		return nil, errors.Wrap(err, "failed to decode asset list")
	}
	if assets == nil {
		assets = []Asset{}
	}
	return assets, nil
}
