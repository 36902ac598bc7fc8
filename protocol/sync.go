package protocol

import (
	"fmt"

	"github.com/datazip-inc/greenhouse-tap/destination"
	"github.com/datazip-inc/greenhouse-tap/types"
	"github.com/datazip-inc/greenhouse-tap/utils"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
	"github.com/spf13/cobra"
)

// syncCmd extracts the selected streams into the destination
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Greenhouse sync command",
	Long:  `Sync command reads the selected Harvest streams, writes them to the destination and persists bookmarks`,
	Example: `
// Base command:
greenhouse sync --config path/to/config --catalog path/to/streams

// With state and a parquet destination:
greenhouse sync --config path/to/config --catalog path/to/streams --state path/to/state --destination path/to/destination
`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if err := loadSourceConfig(); err != nil {
			return err
		}

		if streamsPath != "" {
			catalog = &types.Catalog{}
			if err := utils.UnmarshalFile(streamsPath, catalog, false); err != nil {
				return err
			}
		}

		state = types.NewState(types.StreamType)
		if statePath != "" && utils.IsFileExists(statePath) {
			if err := utils.UnmarshalFile(statePath, state, true); err != nil {
				return fmt.Errorf("failed to load state: %s", err)
			}
		}

		var err error
		destinationConfig, err = loadDestinationConfig()
		return err
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := connector.Setup(ctx); err != nil {
			return err
		}

		streams, err := connector.Discover(ctx)
		if err != nil {
			return err
		}
		if catalog == nil {
			logger.Info("no catalog passed, syncing every discovered stream")
			catalog = types.GetWrappedCatalog(streams)
		}

		categories, err := types.IdentifySelectedStreams(catalog, streams, state)
		if err != nil {
			return err
		}
		connector.SetupState(state)

		pool, err := destination.NewWriterPool(ctx, destinationConfig)
		if err != nil {
			return err
		}

		if err := connector.Read(ctx, pool, categories.All()); err != nil {
			return fmt.Errorf("sync failed after %d records: %s", pool.TotalRecords(), err)
		}

		logger.Infof("Total records read: %d", pool.TotalRecords())
		return state.Persist()
	},
}
