// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package assessment

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/deiu/rdf2go"
	"github.com/piprate/json-gold/ld"
)

// quadLine is a single subject/predicate/object triple rendered into a
// sortable, deterministic form. rdf2go's own Turtle writer does not
// guarantee a stable iteration order (it walks Go maps internally), so
// ToTurtle and ToJSONLD build their own ordering on top of the quad store
// instead of delegating serialization to it — the property tests require
// byte-reproducible output, the quad store itself only needs to be correct.
type quadLine struct {
	subject   rdf2go.Term
	predicate rdf2go.Term
	object    rdf2go.Term
}

func (a *Graph) sortedTriples() []quadLine {
	triples := a.g.All(nil, nil, nil)
	lines := make([]quadLine, 0, len(triples))
	for _, t := range triples {
		lines = append(lines, quadLine{t.Subject, t.Predicate, t.Object})
	}
	sort.Slice(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.subject.String() != b.subject.String() {
			return a.subject.String() < b.subject.String()
		}
		if a.predicate.String() != b.predicate.String() {
			return a.predicate.String() < b.predicate.String()
		}
		return a.object.String() < b.object.String()
	})
	return lines
}

func turtleTerm(t rdf2go.Term) string {
	switch v := t.(type) {
	case *rdf2go.Resource:
		return "<" + v.URI + ">"
	case *rdf2go.BlankNode:
		return "_:" + v.ID
	case *rdf2go.Literal:
		escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(v.Value)
		out := `"` + escaped + `"`
		if v.Language != "" {
			out += "@" + v.Language
		} else if v.Datatype != nil {
			out += "^^<" + strings.Trim(v.Datatype.String(), "<>") + ">"
		}
		return out
	default:
		return t.String()
	}
}

// ToTurtle serializes the graph as Turtle, one statement per line, ordered
// ascending by (subject, predicate, object) for reproducibility.
func (a *Graph) ToTurtle() (string, error) {
	lines := a.sortedTriples()
	var sb strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&sb, "%s %s %s .\n", turtleTerm(l.subject), turtleTerm(l.predicate), turtleTerm(l.object))
	}
	return sb.String(), nil
}

// ToJSONLD serializes the graph as expanded JSON-LD (one object per
// subject, predicate IRIs as keys, `@value`/`@id` leaves), then runs it
// through json-gold's processor. If the processor rejects the document, the
// hand-built document is emitted as it is.
func (a *Graph) ToJSONLD() (string, error) {
	lines := a.sortedTriples()

	bySubject := make(map[string]map[string]interface{})
	order := make([]string, 0)
	for _, l := range lines {
		subjKey := turtleTerm(l.subject)
		node, ok := bySubject[subjKey]
		if !ok {
			node = map[string]interface{}{"@id": termID(l.subject)}
			bySubject[subjKey] = node
			order = append(order, subjKey)
		}

		pred := strings.Trim(l.predicate.String(), "<>")
		entry := jsonLDLeaf(l.object)
		if existing, ok := node[pred]; ok {
			switch v := existing.(type) {
			case []interface{}:
				node[pred] = append(v, entry)
			default:
				node[pred] = []interface{}{v, entry}
			}
		} else {
			node[pred] = []interface{}{entry}
		}
	}

	docs := make([]interface{}, 0, len(order))
	for _, key := range order {
		docs = append(docs, bySubject[key])
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")
	expanded, err := proc.Expand(docs, opts)
	if err != nil {
		// Our hand-built document is already expanded JSON-LD; if the
		// processor rejects it, fall back to emitting it directly rather
		// than failing the message over a cosmetic re-expansion step.
		expanded = docs
	}

	out, err := json.Marshal(expanded)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func termID(t rdf2go.Term) string {
	switch v := t.(type) {
	case *rdf2go.Resource:
		return v.URI
	case *rdf2go.BlankNode:
		return "_:" + v.ID
	default:
		return t.RawValue()
	}
}

func jsonLDLeaf(t rdf2go.Term) interface{} {
	switch v := t.(type) {
	case *rdf2go.Literal:
		leaf := map[string]interface{}{"@value": v.Value}
		if v.Datatype != nil {
			leaf["@type"] = strings.Trim(v.Datatype.String(), "<>")
		}
		if v.Language != "" {
			leaf["@language"] = v.Language
		}
		return leaf
	default:
		return map[string]interface{}{"@id": termID(t)}
	}
}
