// Command recipients runs an embedded PocketBase that hosts the
// report_recipients directory read by the reporter.
package main

import (
	"log"

	"github.com/pocketbase/pocketbase"

	_ "attendance-reporter/migrations"
)

func main() {
	app := pocketbase.New()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
