/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"os"

	"github.com/fabric-rest/assetgw/chaincode/basic"
	"github.com/fabric-rest/assetgw/common/flogging"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

var logger = flogging.MustGetLogger("assetcc")

// serverConfig is read from the environment when the chaincode runs as an
// external service.
type serverConfig struct {
	CCID    string
	Address string
}

func main() {
	chaincode, err := contractapi.NewChaincode(&basic.SmartContract{})
	if err != nil {
		logger.Panicf("Error creating asset-transfer-basic chaincode: %v", err)
	}
	chaincode.Info.Title = "asset-transfer-basic"
	chaincode.Info.Version = "1.0.0"

	config := serverConfig{
		CCID:    os.Getenv("CHAINCODE_ID"),
		Address: os.Getenv("CHAINCODE_SERVER_ADDRESS"),
	}
	if config.Address == "" {
		if err := chaincode.Start(); err != nil {
			logger.Panicf("Error starting asset-transfer-basic chaincode: %v", err)
		}
		return
	}

	server := &shim.ChaincodeServer{
		CCID:     config.CCID,
		Address:  config.Address,
		CC:       chaincode,
		TLSProps: shim.TLSProperties{Disabled: true},
	}
	logger.Infof("Serving asset-transfer-basic chaincode %s on %s", config.CCID, config.Address)
	if err := server.Start(); err != nil {
		logger.Panicf("Error starting asset-transfer-basic chaincode server: %v", err)
	}
}
