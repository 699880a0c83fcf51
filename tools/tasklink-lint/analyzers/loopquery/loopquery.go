// Package loopquery detects single-row repository calls inside loops.
package loopquery

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer detects single-row repository calls inside loops that should be batched.
var Analyzer = &analysis.Analyzer{
	Name:     "loopquery",
	Doc:      "detects single-row repository calls inside loops that should be batched",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// rowMethods are repository methods that read or write one row per call.
var rowMethods = map[string]bool{
	// single-row lookups
	"FindTaskByID":               true,
	"FindRelationshipByID":       true,
	"FindRelationshipTypeByID":   true,
	"FindRelationshipTypeByName": true,
	// single-row writes
	"SaveTask":             true,
	"SaveRelationship":     true,
	"SaveRelationshipType": true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.RangeStmt)(nil),
		(*ast.ForStmt)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		var body *ast.BlockStmt
		switch stmt := n.(type) {
		case *ast.RangeStmt:
			body = stmt.Body
		case *ast.ForStmt:
			body = stmt.Body
		}
		if body == nil {
			return
		}

		ast.Inspect(body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}

			methodName := sel.Sel.Name
			if rowMethods[methodName] {
				pass.Reportf(call.Pos(),
					"potential N+1: %s called inside loop - batch or hoist the call",
					methodName)
			}

			return true
		})
	})

	return nil, nil
}
