// Package analyzers provides all custom static analyzers for tasklink.
package analyzers

import (
	"golang.org/x/tools/go/analysis"

	"github.com/tasklink/tasklink/tools/tasklink-lint/analyzers/ctxfirst"
	"github.com/tasklink/tasklink/tools/tasklink-lint/analyzers/loopquery"
)

// All returns all analyzers to run.
func All() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		ctxfirst.Analyzer,
		loopquery.Analyzer,
	}
}
