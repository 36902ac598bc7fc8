package protocol

import (
	"fmt"

	"github.com/datazip-inc/greenhouse-tap/constants"
	"github.com/datazip-inc/greenhouse-tap/types"
	"github.com/spf13/cobra"
)

// discoverCmd lists every stream the connector can extract
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "discover command",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadSourceConfig()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := commandContext(cmd.Context())
		defer cancel()

		if err := connector.Setup(ctx); err != nil {
			return err
		}

		streams, err := connector.Discover(ctx)
		if err != nil {
			return err
		}
		if len(streams) == 0 {
			return fmt.Errorf("%w: connector returned no streams", constants.ErrNoStreams)
		}

		types.LogCatalog(streams)
		return nil
	},
}
