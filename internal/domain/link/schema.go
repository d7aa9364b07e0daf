package link

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/dealflow/backend/internal/domain/shared"
	"github.com/hashicorp/go-multierror"
)

// Navigation describes one direction of a link: starting at From, the
// related To instances are admitted with Cardinality.
type Navigation struct {
	From        Linkable
	To          Linkable
	Cardinality Cardinality
	// Relation is the index of the declaring link in Schema.Relations
	Relation int
}

// Schema is the validated, immutable relation graph
type Schema struct {
	relations []Definition
	edges     map[Linkable][]Navigation
}

// Build validates defs against resolver and returns the relation graph.
// Every violation is reported; any violation fails the build.
func Build(resolver Resolver, defs ...Definition) (*Schema, error) {
	if resolver == nil {
		return nil, fmt.Errorf("%w: resolver cannot be nil", shared.ErrInvalidInput)
	}

	var result *multierror.Error
	seen := make(map[Pair]int, len(defs))
	s := &Schema{
		relations: make([]Definition, 0, len(defs)),
		edges:     make(map[Linkable][]Navigation),
	}

	for i, def := range defs {
		if err := validateSides(resolver, i, def); err != nil {
			result = multierror.Append(result, err)
			continue
		}

		pair := def.Pair()
		if prev, exists := seen[pair]; exists {
			result = multierror.Append(result, compareDeclarations(defs[prev], prev, def, i))
			continue
		}
		seen[pair] = i
		s.add(def)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return s, nil
}

func validateSides(resolver Resolver, i int, def Definition) error {
	var result *multierror.Error
	for _, side := range []Side{def.A, def.B} {
		if err := resolver.Resolve(side.Linkable); err != nil {
			result = multierror.Append(result, fmt.Errorf("link #%d: %w", i, err))
		}
	}
	if result != nil {
		return result.ErrorOrNil()
	}
	if def.A.Linkable == def.B.Linkable {
		return fmt.Errorf("%w: link #%d relates '%s' to itself", shared.ErrInvalidInput, i, def.A.Linkable)
	}
	return nil
}

func compareDeclarations(prev Definition, prevIdx int, def Definition, idx int) error {
	for _, l := range def.Pair() {
		want, _ := prev.CardinalityOf(l)
		got, _ := def.CardinalityOf(l)
		if want != got {
			return fmt.Errorf("%w: link #%d declares '%s' as %s, link #%d declared it as %s",
				ErrConflictingLink, idx, l, got, prevIdx, want)
		}
	}
	return fmt.Errorf("%w: link #%d repeats link #%d (%s)", ErrDuplicateLink, idx, prevIdx, def.Pair())
}

func (s *Schema) add(def Definition) {
	idx := len(s.relations)
	s.relations = append(s.relations, def)
	s.edges[def.A.Linkable] = append(s.edges[def.A.Linkable], Navigation{
		From:        def.A.Linkable,
		To:          def.B.Linkable,
		Cardinality: def.B.Cardinality(),
		Relation:    idx,
	})
	s.edges[def.B.Linkable] = append(s.edges[def.B.Linkable], Navigation{
		From:        def.B.Linkable,
		To:          def.A.Linkable,
		Cardinality: def.A.Cardinality(),
		Relation:    idx,
	})
}

// Relations returns the links in declaration order
func (s *Schema) Relations() []Definition {
	out := make([]Definition, len(s.relations))
	copy(out, s.relations)
	return out
}

// Len returns the number of links
func (s *Schema) Len() int {
	return len(s.relations)
}

// Navigate returns the navigation from one linkable to another, in either
// declaration direction
func (s *Schema) Navigate(from, to Linkable) (Navigation, bool) {
	for _, nav := range s.edges[from] {
		if nav.To == to {
			return nav, true
		}
	}
	return Navigation{}, false
}

// Neighbors returns every linkable reachable from l in one hop, in declaration order
func (s *Schema) Neighbors(l Linkable) []Navigation {
	edges := s.edges[l]
	out := make([]Navigation, len(edges))
	copy(out, edges)
	return out
}

// Encode returns the canonical JSON encoding of the relation table
func (s *Schema) Encode() ([]byte, error) {
	return json.Marshal(s.relations)
}

// Fingerprint returns the hex SHA-256 of Encode
func (s *Schema) Fingerprint() (string, error) {
	data, err := s.Encode()
	if err != nil {
		return "", fmt.Errorf("failed to encode schema: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
