/*
Package document defines the typed OpenAPI model held by the editor.

# Overview

A Document is produced once at the import boundary from a generic parsed
tree (see package format) and is never re-inspected for shape afterwards.
Nodes that may be either a reference or an inline definition decode into
tagged unions:

  - ParameterOrRef
  - RequestBodyOrRef
  - ResponseOrRef
  - SecuritySchemeOrRef

A $ref key always wins over inline fields, and keys written beside it are
kept as Siblings. Any other object decodes as an inline definition. The
shape tests are exported as IsReference, IsInlineParameter and
IsInlineRequestBody; a parameter without a name is reported when a request
is built, not when the document is imported.

# References

Only local component references are followed:

	p, err := doc.Components.ResolveParameter("#/components/parameters/PageSize")

Grouped names may be written with an unescaped slash, so
"#/components/parameters/common/PageSize" and
"#/components/parameters/common~1PageSize" both name "common/PageSize".

Chains are followed up to a fixed depth; dangling and cyclic references
return ErrUnresolvedRef.

# Extensions

Every object keeps the keys its type does not declare, x-* extensions
included, in an Extensions map, so an import followed by an export loses
nothing.

# Copy on write

Documents held by the store are shared snapshots. Call Clone before
mutating one.
*/
package document
