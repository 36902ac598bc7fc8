package protocol

import (
	"context"
	"fmt"

	"github.com/datazip-inc/greenhouse-tap/types"
	"github.com/datazip-inc/greenhouse-tap/utils"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
	"github.com/spf13/cobra"
)

// clearCmd drops bookmarks from the state file so the next sync starts over
var clearCmd = &cobra.Command{
	Use:   "clear-state",
	Short: "Greenhouse command to clear the bookmarks of selected streams",
	Long:  `Clear-state resets the bookmarks of the streams selected in --streams, or every bookmark when no streams file is passed. Destination data is left untouched`,
	Example: `
// Clear every bookmark:
greenhouse clear-state --state path/to/state

// Clear the bookmarks of the selected streams:
greenhouse clear-state --state path/to/state --streams path/to/streams
`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if statePath == "" {
			return fmt.Errorf("--state not passed")
		}
		if noSave {
			return fmt.Errorf("--no-save can not be combined with clear-state")
		}

		catalog = nil
		if streamsPath != "" {
			catalog = &types.Catalog{}
			if err := utils.UnmarshalFile(streamsPath, catalog, false); err != nil {
				return err
			}
		}

		state = types.NewState(types.StreamType)
		if err := utils.UnmarshalFile(statePath, state, true); err != nil {
			return fmt.Errorf("failed to load state: %s", err)
		}

		return loadSourceConfig()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := clearState(cmd.Context()); err != nil {
			return err
		}

		return state.Persist()
	},
}

// clearState resets the loaded state in place; no Harvest call is made
func clearState(ctx context.Context) error {
	if catalog == nil {
		logger.Info("no streams passed, clearing every bookmark")
		state.ResetStreams()
		return nil
	}

	streams, err := connector.Discover(ctx)
	if err != nil {
		return err
	}

	categories, err := types.IdentifySelectedStreams(catalog, streams, state)
	if err != nil {
		return fmt.Errorf("failed to get selected streams for clearing: %s", err)
	}

	connector.SetupState(state)
	connector.ClearState(categories.All())
	logger.Infof("Cleared bookmarks of %d stream(s)", len(categories.SelectedStreams))
	return nil
}
