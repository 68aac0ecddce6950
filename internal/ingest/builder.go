// Package ingest assembles the property table: one CompoundRecord per
// candidate ligand, joined by identifier from a structure list, pose files
// and any number of descriptor or prediction tables.
package ingest

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/admet-cli/internal/model"
)

// ErrEmptyBatch is returned when there are no base structures at all.
var ErrEmptyBatch = model.ErrEmptyBatch

// Sources are the inputs of one build. Structures and Poses together define
// the compound list; every table in Properties is joined onto it.
type Sources struct {
	Structures *Table
	Poses      []Pose
	Properties []*Table
}

// Result is the assembled property table.
type Result struct {
	Compounds []model.CompoundRecord
	Failures  []model.BuildFailure
}

// Dropped counts compounds removed for lack of a structure.
func (r *Result) Dropped() int {
	n := 0
	for _, f := range r.Failures {
		if f.Kind == model.FailureStructure {
			n++
		}
	}
	return n
}

// Build joins the sources by identifier. Compounds keep structure-table
// order followed by poses absent from that table. A compound without a
// structure descriptor is dropped and recorded as a structure failure. A
// table row that matches no compound, or whose key appears more than once,
// is recorded as an alignment failure and attached to nothing. Compounds
// missing from a table keep those fields empty.
func Build(src Sources) (*Result, error) {
	if src.Structures.Len() == 0 && len(src.Poses) == 0 {
		return nil, ErrEmptyBatch
	}

	res := &Result{}
	var (
		order []string
		byID  = make(map[string]*model.CompoundRecord)
	)

	if t := src.Structures; t.Len() > 0 {
		idCol, _ := t.Index(identifierAliases...)
		smiCol, _ := t.Index(structureAliases...)
		cols := bindProperties(t)

		for i, row := range t.Rows {
			id := cell(row, idCol)
			if id == "" {
				res.fail("", model.FailureAlignment, t.Source, fmt.Sprintf("row %d: missing identifier", i+2))
				continue
			}
			if _, dup := byID[id]; dup {
				res.fail(id, model.FailureAlignment, t.Source, fmt.Sprintf("row %d: duplicate identifier", i+2))
				continue
			}
			rec := &model.CompoundRecord{Identifier: id, StructureDescriptor: cell(row, smiCol)}
			apply(rec, cols, row)
			byID[id] = rec
			order = append(order, id)
		}
	}

	for _, p := range src.Poses {
		rec, ok := byID[p.Identifier]
		if !ok {
			rec = &model.CompoundRecord{Identifier: p.Identifier}
			byID[p.Identifier] = rec
			order = append(order, p.Identifier)
		}
		if !rec.DockingScore.Valid {
			rec.DockingScore = p.DockingScore
		}
	}

	for _, id := range order {
		if byID[id].StructureDescriptor == "" {
			res.fail(id, model.FailureStructure, "structures", "no structure descriptor")
			delete(byID, id)
		}
	}

	for _, t := range src.Properties {
		if t.Len() > 0 {
			res.join(t, byID)
		}
	}

	res.Compounds = make([]model.CompoundRecord, 0, len(byID))
	for _, id := range order {
		if rec, ok := byID[id]; ok {
			res.Compounds = append(res.Compounds, *rec)
		}
	}

	zap.L().Info("ingest: property table built",
		zap.Int("compounds", len(res.Compounds)),
		zap.Int("failures", len(res.Failures)),
	)
	return res, nil
}

// join attaches the rows of t to compounds. Rows are keyed by identifier
// when t has an identifier column, otherwise by structure descriptor.
func (r *Result) join(t *Table, byID map[string]*model.CompoundRecord) {
	keyCol, byIdentifier := t.Index(identifierAliases...)
	lookup := byID
	if !byIdentifier {
		var ok bool
		keyCol, ok = t.Index(structureAliases...)
		if !ok {
			r.fail("", model.FailureAlignment, t.Source, "no identifier or structure column")
			return
		}
		lookup = r.indexByStructure(byID, t.Source)
	}

	rowsByKey := make(map[string][]int)
	var keys []string
	for i, row := range t.Rows {
		k := cell(row, keyCol)
		if k == "" {
			r.fail("", model.FailureAlignment, t.Source, fmt.Sprintf("row %d: missing key", i+2))
			continue
		}
		if _, seen := rowsByKey[k]; !seen {
			keys = append(keys, k)
		}
		rowsByKey[k] = append(rowsByKey[k], i)
	}

	cols := bindProperties(t)
	for _, k := range keys {
		idx := rowsByKey[k]
		rec, ok := lookup[k]
		switch {
		case !ok:
			r.fail(k, model.FailureAlignment, t.Source, "no matching compound")
		case len(idx) > 1:
			r.fail(rec.Identifier, model.FailureAlignment, t.Source, fmt.Sprintf("%d rows share key %q", len(idx), k))
		default:
			apply(rec, cols, t.Rows[idx[0]])
		}
	}
}

// indexByStructure maps structure descriptors to compounds. A descriptor
// shared by several compounds is ambiguous and left out of the index.
func (r *Result) indexByStructure(byID map[string]*model.CompoundRecord, source string) map[string]*model.CompoundRecord {
	idx := make(map[string]*model.CompoundRecord, len(byID))
	ambiguous := make(map[string]bool)
	for _, rec := range byID {
		k := strings.TrimSpace(rec.StructureDescriptor)
		if _, dup := idx[k]; dup {
			ambiguous[k] = true
			continue
		}
		idx[k] = rec
	}
	for _, k := range slices.Sorted(maps.Keys(ambiguous)) {
		delete(idx, k)
		r.fail("", model.FailureAlignment, source, fmt.Sprintf("structure %q shared by several compounds", k))
	}
	return idx
}

func (r *Result) fail(id string, kind model.FailureKind, source, detail string) {
	r.Failures = append(r.Failures, model.BuildFailure{
		Identifier: id,
		Kind:       kind,
		Source:     source,
		Detail:     detail,
	})
	zap.L().Warn("ingest: build failure",
		zap.String("identifier", id),
		zap.String("kind", string(kind)),
		zap.String("source", source),
		zap.String("detail", detail),
	)
}
