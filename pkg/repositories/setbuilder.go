package repositories

import (
	"fmt"
	"strings"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/jsonutil"
)

// setBuilder accumulates SET clauses for a dynamic UPDATE built from a
// patch: only fields present in the request appear in the statement.
type setBuilder struct {
	clauses []string
	args    []any
}

// add appends "col = $n" with the given value.
func (b *setBuilder) add(col string, val any) {
	b.args = append(b.args, val)
	b.clauses = append(b.clauses, fmt.Sprintf("%s = $%d", col, len(b.args)))
}

// addNull appends "col = NULL".
func (b *setBuilder) addNull(col string) {
	b.clauses = append(b.clauses, col+" = NULL")
}

// empty reports whether no field clause has been added.
func (b *setBuilder) empty() bool {
	return len(b.clauses) == 0
}

// set builds "SET a = $1, b = NULL, ...".
func (b *setBuilder) set() string {
	return "SET " + strings.Join(b.clauses, ", ")
}

// next returns the next positional parameter index.
func (b *setBuilder) next() int {
	return len(b.args) + 1
}

// applyOpt adds a patch field to the builder: absent fields are skipped,
// explicit nulls clear the column, values replace it.
func applyOpt[T any](b *setBuilder, col string, o jsonutil.Optional[T]) {
	if !o.Set {
		return
	}
	if o.Null {
		b.addNull(col)
		return
	}
	b.add(col, o.Value)
}
