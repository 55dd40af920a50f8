// Package harness runs OCTAVE conformance vectors.
//
// # Vector Format
//
// Vectors are YAML files. A file may hold several vectors separated by
// "---":
//
//	name: enum_case_repair
//	description: "Enum values are case-folded when fixes are enabled"
//	schemas:
//	  - schemas/project.yaml
//	schema: PROJECT
//	strict: true
//	fix: true
//	input: |
//	  ===DOC===
//	  META:
//	    TYPE::PROJECT
//	  ===END===
//	expect:
//	  canonical: |-
//	    ===DOC===
//	    ...
//	  codes: []
//	  repairs: 1
//
// A vector that should fail to parse names the fatal code instead:
//
//	expect:
//	  error: E001
//
// With mode set, the canonical document is also projected:
//
//	mode: executive
//	format: octave
//	expect:
//	  lossy: true
//	  omitted: [TESTS, CI]
//
// # Properties
//
// Every passing vector with a canonical result is also checked for
// idempotence: ingesting the canonical text again must reproduce it
// byte for byte.
//
// # Golden Files
//
// RunWithGolden pins the canonical output of a vector in
// testdata/golden/{name}.golden. To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
