// pyhost runs and supervises Python interpreter processes for a host application.
package main

import (
	"os"

	"github.com/jongio/pyhost/cli"
)

func main() {
	os.Exit(cli.Execute())
}
