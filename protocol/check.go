/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package protocol

import (
	"github.com/datazip-inc/greenhouse-tap/destination"
	"github.com/datazip-inc/greenhouse-tap/types"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "check command",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		// check for destination config
		if destinationConfigPath != notSet {
			var err error
			destinationConfig, err = loadDestinationConfig()
			return err
		}

		return loadSourceConfig()
	},
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := commandContext(cmd.Context())
		defer cancel()

		err := func() error {
			// If a destination is passed, we are checking the destination
			if destinationConfig != nil {
				_, err := destination.NewWriterPool(ctx, destinationConfig)
				return err
			}

			return connector.Check(ctx)
		}()

		message := types.Message{
			Type: types.ConnectionStatusMessage,
			ConnectionStatus: &types.StatusRow{
				Status: types.ConnectionSucceed,
			},
		}
		if err != nil {
			logger.Errorf("connection check failed: %s", err)
			message.ConnectionStatus.Message = err.Error()
			message.ConnectionStatus.Status = types.ConnectionFailed
		}
		logger.Output(message)
	},
}
