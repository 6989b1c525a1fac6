/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"os"

	"github.com/fabric-rest/assetgw/common/viperutil"
	"github.com/fabric-rest/assetgw/internal/assetgw/node"
	"github.com/fabric-rest/assetgw/internal/assetgw/version"
	"github.com/spf13/cobra"
)

var cfgPath string

// The main command describes the service and
// defaults to printing the help message.
var mainCmd = &cobra.Command{
	Use:   "assetgw",
	Short: "REST gateway for the asset-transfer chaincode.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgPath != "" {
			return os.Setenv(viperutil.CfgPathEnv, cfgPath)
		}
		return nil
	},
}

func main() {
	mainFlags := mainCmd.PersistentFlags()
	mainFlags.StringVar(&cfgPath, "cfg-path", "", "Directory containing assetgw.yaml; overrides "+viperutil.CfgPathEnv)

	mainCmd.AddCommand(version.Cmd())
	mainCmd.AddCommand(node.StartCmd())
	mainCmd.AddCommand(node.ConfigCmd())

	// On failure Cobra prints the usage message and error string, so we only
	// need to exit with a non-0 status
	if mainCmd.Execute() != nil {
		os.Exit(1)
	}
}
