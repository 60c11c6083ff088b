package formatter

import (
	"context"

	"github.com/siyuan-infoblox/ts-import-types/pkg/resolver"
	"github.com/siyuan-infoblox/ts-import-types/pkg/syntax"
)

// ClassifyKind maps a definition kind to its classification. Only type aliases and
// interfaces are types; classes, enums, functions, variables and namespaces all have
// a runtime value.
func ClassifyKind(kind resolver.DefinitionKind) Classification {
	switch kind {
	case resolver.KindType, resolver.KindInterface:
		return Type
	default:
		return Value
	}
}

// Classify resolves spec, imported by fromFile from moduleSpecifier, and classifies
// every definition it resolves to. A definition reached through a type-only export is
// a type whatever its kind. An unresolved specifier yields no pairs.
func Classify(ctx context.Context, r resolver.Resolver, fromFile, moduleSpecifier string, spec syntax.ImportSpecifier) ([]ClassifiedName, error) {
	defs, err := r.ResolveDefinitions(ctx, fromFile, moduleSpecifier, spec.Name)
	if err != nil {
		return nil, err
	}

	names := make([]ClassifiedName, 0, len(defs))
	for _, def := range defs {
		classification := ClassifyKind(def.Kind)
		if def.TypeOnly {
			classification = Type
		}
		names = append(names, ClassifiedName{
			DisplayName:    spec.DisplayName(),
			Classification: classification,
		})
	}
	return names, nil
}

// merge reduces the pairs of one specifier to a single classification: Type only when
// every resolved definition is a type.
func merge(names []ClassifiedName) Classification {
	for _, name := range names {
		if name.Classification == Value {
			return Value
		}
	}
	return Type
}
