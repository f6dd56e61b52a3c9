package config

// Document is the decoded, uncompiled form of a configuration file.
// YAML and CUE documents decode into the same shape.
type Document struct {
	SubjectField   string             `yaml:"subject_field" json:"subject_field"`
	WholeTextRules []WholeTextRuleDoc `yaml:"whole_text_rules" json:"whole_text_rules"`
	CharacterRules []CharacterRuleDoc `yaml:"character_rules" json:"character_rules"`
}

// WholeTextRuleDoc is one whole-text rule as written in a document.
type WholeTextRuleDoc struct {
	Name             string `yaml:"name,omitempty" json:"name,omitempty"`
	SourceField      string `yaml:"source_field" json:"source_field"`
	DestinationField string `yaml:"destination_field" json:"destination_field"`
	SourceType       string `yaml:"source_record_type" json:"source_record_type"`
	BlankOut         bool   `yaml:"blank_out_after_copy" json:"blank_out_after_copy"`
	CopyOnlyIfEmpty  bool   `yaml:"copy_only_if_destination_empty" json:"copy_only_if_destination_empty"`
	RemovePattern    string `yaml:"remove_pattern,omitempty" json:"remove_pattern,omitempty"`
	BlankOutPattern  string `yaml:"blank_out_pattern,omitempty" json:"blank_out_pattern,omitempty"`

	// Line is the rule's line in the source document, 0 when unknown.
	Line int `yaml:"-" json:"-"`
}

// CharacterRuleDoc is one character rule as written in a document.
type CharacterRuleDoc struct {
	Name              string   `yaml:"name,omitempty" json:"name,omitempty"`
	SourceField       string   `yaml:"source_field" json:"source_field"`
	SourceType        string   `yaml:"source_record_type" json:"source_record_type"`
	DestinationFields []string `yaml:"destination_fields" json:"destination_fields"`
	CopyOnlyIfEmpty   bool     `yaml:"copy_only_if_destination_empty" json:"copy_only_if_destination_empty"`
	CharacterFilter   string   `yaml:"character_filter,omitempty" json:"character_filter,omitempty"`

	Line int `yaml:"-" json:"-"`
}
