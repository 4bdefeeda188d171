//go:build z3

package cmd

import (
	"github.com/hornverify/hornverify/pkg/smt"
	"github.com/hornverify/hornverify/pkg/smt/z3"
	"github.com/hornverify/hornverify/pkg/term"
)

func init() {
	solverFactory = func(store *term.Store) smt.Factory { return z3.Factory(store) }
}
