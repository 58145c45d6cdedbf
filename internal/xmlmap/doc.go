// Package xmlmap converts XML documents to ordered mappings and back.
//
// Decoding follows these rules, in order:
//
//  1. An element with no attributes, children or text decodes to true.
//  2. An element with only text decodes to the trimmed text.
//  3. An element with attributes and no children decodes to a Mapping of
//     "@name" keys, plus "#text" when it has text.
//  4. An element with children decodes to a Mapping holding its "@name"
//     attributes followed by its children. A tag seen twice under the same
//     parent becomes a list in document order. Tags named in forceList are
//     always lists.
//
// The decoded document is wrapped as {rootTag: value}. Namespace prefixes
// such as "qemu:commandline" are kept as written.
//
// Encode is the inverse: "@" keys become attributes, "#text" becomes text,
// Mappings become child elements, lists become repeated siblings, true
// becomes an empty element and false is omitted.
package xmlmap
