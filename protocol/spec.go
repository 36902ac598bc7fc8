package protocol

import (
	"fmt"
	"strings"

	"github.com/datazip-inc/greenhouse-tap/destination"
	"github.com/datazip-inc/greenhouse-tap/types"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

// specCmd prints the JSON schema of the source config, or of a destination
// config when --destination-type is passed
var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "spec command",
	RunE: func(_ *cobra.Command, _ []string) error {
		config := connector.Spec()
		if destinationType != notSet {
			typ := types.DestinationType(strings.ToUpper(destinationType))
			newFunc, found := destination.RegisteredWriters[typ]
			if !found {
				return fmt.Errorf("invalid destination type has been passed [%s]", typ)
			}
			config = newFunc().Spec()
		}

		spec, err := reflectSpec(config)
		if err != nil {
			return err
		}

		logger.Output(types.Message{Type: types.SpecMessage, Spec: spec})
		return logger.FileLogger(spec, "spec", ".json")
	},
}

func reflectSpec(config any) (map[string]any, error) {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}

	data, err := json.Marshal(reflector.Reflect(config))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal spec: %s", err)
	}

	spec := map[string]any{}
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal spec: %s", err)
	}

	return spec, nil
}
