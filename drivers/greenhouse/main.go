package main

import (
	tap "github.com/datazip-inc/greenhouse-tap"
	driver "github.com/datazip-inc/greenhouse-tap/drivers/greenhouse/internal"
	"github.com/joho/godotenv"
)

func main() {
	// a missing .env is fine, the environment may carry the credentials
	_ = godotenv.Load()

	tap.RegisterDriver(&driver.Greenhouse{})
}
