package tap

import (
	"os"

	"github.com/datazip-inc/greenhouse-tap/drivers/abstract"
	"github.com/datazip-inc/greenhouse-tap/protocol"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
	"github.com/datazip-inc/greenhouse-tap/utils/safego"

	_ "github.com/datazip-inc/greenhouse-tap/destination/parquet" // registering local parquet writer
	_ "github.com/datazip-inc/greenhouse-tap/destination/stdout"  // registering stdout writer
)

func RegisterDriver(driver abstract.DriverInterface) {
	defer safego.Recovery(true)

	// Execute the root command
	err := protocol.CreateRootCommand(driver).Execute()
	if err != nil {
		logger.Fatal(err)
	}

	os.Exit(0)
}
