/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package node

import (
	"fmt"

	"github.com/fabric-rest/assetgw/internal/assetgw/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// ConfigCmd returns the command that prints the effective configuration.
func ConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Prints the effective configuration.",
		Long:  `Prints the configuration assembled from assetgw.yaml, environment overrides and defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("trailing args detected")
			}
			cmd.SilenceUsage = true

			conf, err := config.Load()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(conf)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
