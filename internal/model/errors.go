package model

import "github.com/rotisserie/eris"

// ErrEmptyBatch reports that a run had no compounds to process. It is
// distinct from a successful run that produced zero decisions.
var ErrEmptyBatch = eris.New("no compounds to process")
