// Package jsonld reads CloudObjects object descriptions.
//
// Documents are expanded and flattened with json-gold into a Graph of
// Nodes keyed by IRI. Reader layers prefix expansion and typed accessors
// on top of single nodes.
package jsonld
