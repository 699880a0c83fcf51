// tasklink-lint is a custom static analyzer for tasklink code patterns.
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/tasklink/tasklink/tools/tasklink-lint/analyzers"
)

func main() {
	multichecker.Main(analyzers.All()...)
}
