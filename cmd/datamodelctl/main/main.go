// Command datamodelctl is the CLI entry point; all of its logic lives in
// the datamodelctl package so it stays testable without a subprocess.
package main

import (
	"os"

	"github.com/kodeflow/datamodel/cmd/datamodelctl"
)

func main() {
	datamodelctl.Execute(os.Args[1:]...)
}
