// Package digest renders the plain-text email digest for a watch run.
//
// Formatting is pure and deterministic: the same input always produces the
// same subject and body, so tests can compare whole strings and a re-sent
// digest is byte-identical. Bills are grouped by jurisdiction with the
// configured priority jurisdictions first.
package digest
