// Package harness runs propagation scenarios as executable contract tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	models:
//	  - name: Vocab
//	    fields: [Word, Sentence]
//	  - name: Card
//	    fields: [Expression, Sentence]
//	records:
//	  - id: 1
//	    type: Vocab
//	    fields: { Word: 食べる, Sentence: "私は[ruby]食べる[/ruby]。" }
//	  - id: 2
//	    type: Card
//	    fields: { Expression: 食べる }
//	config:
//	  subject_field: Expression
//	  whole_text_rules:
//	    - source_field: Sentence
//	      destination_field: Sentence
//	      source_record_type: Vocab
//	      remove_pattern: '\[.*?\]'
//	edit:
//	  record: 2
//	  field: Expression
//	expect:
//	  changed: true
//	  fields: { Sentence: 私は食べる。 }
//	assertions:
//	  - type: outcome
//	    rule: Sentence->Sentence
//	    status: set
//
// The config block uses the same shape as a configuration file (see package
// config).
//
// # Assertion Types
//
//   - outcome: an outcome with the given rule, and optionally destination,
//     character and status, was recorded
//   - outcome_count: exactly count outcomes were recorded
//   - notice: the given notice was sent to the user
//   - persisted: the stored copy of the edited record has the given field values
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory collection with a fixed run
// id, so the rendered snapshot is byte-stable for golden comparison. After the
// first run the harness runs propagation again on the same record and fails
// the scenario if anything changes: propagation must be idempotent.
package harness
