package main

import (
	"fmt"

	"github.com/tuannm99/bptreeidx/internal/page"
)

// parseOperator maps the CLI's --low-op/--high-op flag values to the
// operators StartScan accepts.
func parseOperator(s string) (page.Operator, error) {
	switch s {
	case "gt":
		return page.OpGT, nil
	case "gte":
		return page.OpGTE, nil
	case "lt":
		return page.OpLT, nil
	case "lte":
		return page.OpLTE, nil
	default:
		return 0, fmt.Errorf("unknown operator %q (want one of gt, gte, lt, lte)", s)
	}
}
