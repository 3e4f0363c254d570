// Package template implements parameterized poll templates inside the
// polling context.
//
// A template is a named question plus ordered option bodies, any of which
// may reference `{identifier}` placeholders. The module owns the placeholder
// scanner, binding-order rules, literal (non-reentrant) rendering, template
// CRUD, usage counters, and the default template seed set.
package template
