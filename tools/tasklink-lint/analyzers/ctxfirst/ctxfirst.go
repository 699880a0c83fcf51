// Package ctxfirst checks the position of context.Context parameters.
package ctxfirst

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer reports functions whose context.Context parameter is not first.
var Analyzer = &analysis.Analyzer{
	Name:     "ctxfirst",
	Doc:      "reports functions whose context.Context parameter is not first",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.FuncDecl)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		fn := n.(*ast.FuncDecl)
		if fn.Type.Params == nil {
			return
		}

		index := 0
		for _, field := range fn.Type.Params.List {
			if isContextType(field.Type) && index > 0 {
				pass.Reportf(field.Pos(),
					"context.Context should be the first parameter of %s",
					fn.Name.Name)
			}
			// Unnamed parameters still occupy one position.
			if len(field.Names) == 0 {
				index++
			} else {
				index += len(field.Names)
			}
		}
	})

	return nil, nil
}

// isContextType reports whether expr is the type context.Context.
func isContextType(expr ast.Expr) bool {
	sel, ok := expr.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	ident, ok := sel.X.(*ast.Ident)
	if !ok {
		return false
	}
	return ident.Name == "context" && sel.Sel.Name == "Context"
}
