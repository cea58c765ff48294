// Package selector turns "a function, a field name or a literal" into a
// uniform extraction function over (value, key) and builds comparison
// predicates from an operator whitelist.
//
//	selector.Of("name")                 // v.Name(), v.Name, v["name"]
//	selector.Of(func(v any) any { ... }) // used as is
//	selector.Where("age", ">=", 18)     // loose comparison
//	selector.WhereStrict("id", 3)       // identity comparison
//
// Loose comparison follows dynamic-language rules: numbers and numeric
// strings compare numerically, booleans compare by truthiness and nil
// equals zero values. Strict comparison requires identical dynamic types.
package selector
