package policyopa

import "github.com/open-policy-agent/opa/ast"

// Admission policies run on every door scan, so they are limited to pure
// builtins: no http.send, no randomness, no wall clock reads.
var allowedBuiltins = map[string]struct{}{
	"assign":                {},
	"concat":                {},
	"contains":              {},
	"count":                 {},
	"endswith":              {},
	"eq":                    {},
	"equal":                 {},
	"gt":                    {},
	"gte":                   {},
	"lower":                 {},
	"lt":                    {},
	"lte":                   {},
	"minus":                 {},
	"neq":                   {},
	"object.get":            {},
	"plus":                  {},
	"sprintf":               {},
	"startswith":            {},
	"time.add_date":         {},
	"time.parse_rfc3339_ns": {},
	"trim":                  {},
	"upper":                 {},
}

func filterBuiltins(builtins []*ast.Builtin) []*ast.Builtin {
	allowed := make([]*ast.Builtin, 0, len(builtins))
	for _, builtin := range builtins {
		if _, ok := allowedBuiltins[builtin.Name]; !ok {
			continue
		}
		allowed = append(allowed, builtin)
	}
	return allowed
}
