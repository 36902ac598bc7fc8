package protocol

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/datazip-inc/greenhouse-tap/constants"
	"github.com/datazip-inc/greenhouse-tap/drivers/abstract"
	"github.com/datazip-inc/greenhouse-tap/types"
	"github.com/datazip-inc/greenhouse-tap/utils"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const notSet = "not-set"

var (
	configPath            string
	destinationConfigPath string
	destinationType       string
	statePath             string
	streamsPath           string
	batchSize             int64
	noSave                bool
	logLevel              string
	timeout               int64 // timeout in seconds

	catalog           *types.Catalog
	state             *types.State
	destinationConfig *types.WriterConfig

	commands  = []*cobra.Command{}
	connector *abstract.AbstractDriver
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "greenhouse",
	Short: "Greenhouse Harvest tap",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		viper.SetDefault(constants.ConfigFolder, os.TempDir())
		viper.SetDefault(constants.StatePath, filepath.Join(os.TempDir(), "state.json"))
		viper.SetDefault(constants.StreamsPath, filepath.Join(os.TempDir(), "streams.json"))
		viper.Set(constants.NoSave, noSave)
		viper.Set(constants.LogLevel, logLevel)

		if !noSave {
			configFolder := utils.Ternary(configPath == notSet, filepath.Dir(destinationConfigPath), filepath.Dir(configPath)).(string)
			viper.Set(constants.ConfigFolder, configFolder)
			viper.Set(constants.StatePath, utils.Ternary(statePath == "", filepath.Join(configFolder, "state.json"), statePath).(string))
			viper.Set(constants.StreamsPath, utils.Ternary(streamsPath == "", filepath.Join(configFolder, "streams.json"), streamsPath).(string))
		}

		// logger uses CONFIG_FOLDER
		logger.Init()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}

		if ok := utils.IsValidSubcommand(commands, args[0]); !ok {
			return fmt.Errorf("'%s' is an invalid command. Use 'greenhouse --help' to display usage guide", args[0])
		}

		return nil
	},
}

func CreateRootCommand(driver abstract.DriverInterface) *cobra.Command {
	RootCmd.AddCommand(commands...)
	connector = abstract.NewAbstractDriver(driver)

	return RootCmd
}

// loadSourceConfig decodes --config into the driver config; without it the
// config is left empty and filled from the environment during Setup
func loadSourceConfig() error {
	config := connector.GetConfigRef()
	if configPath == notSet || configPath == "" {
		return nil
	}

	return utils.UnmarshalFile(configPath, config, false)
}

// loadDestinationConfig decodes --destination, falling back to stdout
func loadDestinationConfig() (*types.WriterConfig, error) {
	config := &types.WriterConfig{Type: types.Stdout, WriterConfig: map[string]any{}}
	if destinationConfigPath != notSet {
		if err := utils.UnmarshalFile(destinationConfigPath, config, false); err != nil {
			return nil, err
		}
	}
	config.Type = types.DestinationType(strings.ToUpper(string(config.Type)))
	if config.BatchSize == 0 {
		config.BatchSize = batchSize
	}

	return config, nil
}

// commandContext applies --timeout when one is set
func commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
}

func init() {
	commands = append(commands, specCmd, checkCmd, discoverCmd, syncCmd, clearCmd)
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "", notSet, "Config for connector, optional when credentials come from the environment")
	RootCmd.PersistentFlags().StringVarP(&destinationConfigPath, "destination", "", notSet, "(Optional) Destination config, records are printed to stdout when unset")
	RootCmd.PersistentFlags().StringVarP(&destinationType, "destination-type", "", notSet, "Destination type for spec")
	RootCmd.PersistentFlags().StringVarP(&streamsPath, "catalog", "", "", "Path to the streams file for the connector")
	RootCmd.PersistentFlags().StringVarP(&streamsPath, "streams", "", "", "Path to the streams file for the connector")
	RootCmd.PersistentFlags().StringVarP(&statePath, "state", "", "", "(Optional) State for connector")
	RootCmd.PersistentFlags().Int64VarP(&batchSize, "destination-buffer-size", "", constants.DefaultBatchSize, "(Optional) Batch size for destination")
	RootCmd.PersistentFlags().BoolVarP(&noSave, "no-save", "", false, "(Optional) Flag to skip logging artifacts in file")
	RootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "info", "(Optional) Log level")
	RootCmd.PersistentFlags().Int64VarP(&timeout, "timeout", "", -1, "(Optional) Timeout for check and discover (in seconds)")
	// Disable Cobra CLI's built-in usage and error handling
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
}
