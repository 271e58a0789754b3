//go:build netlib

package main

import (
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/netlib/blas/netlib"
)

// Build with `-tags netlib` to route gonum's dense operations through an
// external BLAS. Irrelevant for the demo corpora, noticeable once the
// vocab_size² x vocab_size table gets large.
func init() {
	blas64.Use(netlib.Implementation{})
}
