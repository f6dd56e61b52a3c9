package config

import (
	"fmt"
	"regexp"
	"strings"
)

// Compile turns a document into a Config.
//
// All problems are collected; when any is found the returned Config is nil
// and the error is of type Errors.
func Compile(doc Document) (*Config, error) {
	var errs Errors

	cfg := &Config{SubjectField: strings.TrimSpace(doc.SubjectField)}
	if cfg.SubjectField == "" {
		errs = append(errs, &CompileError{
			Field:   "subject_field",
			Code:    ErrCodeNoSubject,
			Message: "subject_field is required",
		})
	}

	for i, d := range doc.WholeTextRules {
		rule, ruleErrs := compileWholeText(i, d)
		errs = append(errs, ruleErrs...)
		if len(ruleErrs) == 0 {
			cfg.WholeText = append(cfg.WholeText, rule)
		}
	}

	for i, d := range doc.CharacterRules {
		rule, ruleErrs := compileCharacter(i, d)
		errs = append(errs, ruleErrs...)
		if len(ruleErrs) == 0 {
			cfg.Characters = append(cfg.Characters, rule)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return cfg, nil
}

func compileWholeText(i int, d WholeTextRuleDoc) (WholeTextRule, Errors) {
	path := fmt.Sprintf("whole_text_rules[%d]", i)
	var errs Errors

	errs = append(errs, required(path, d.Line, map[string]string{
		"source_field":       d.SourceField,
		"destination_field":  d.DestinationField,
		"source_record_type": d.SourceType,
	})...)

	rule := WholeTextRule{
		Name:             d.Name,
		SourceField:      d.SourceField,
		DestinationField: d.DestinationField,
		SourceType:       d.SourceType,
		BlankOut:         d.BlankOut,
		CopyOnlyIfEmpty:  d.CopyOnlyIfEmpty,
	}
	if rule.Name == "" {
		rule.Name = d.SourceField + "->" + d.DestinationField
	}

	if d.RemovePattern != "" {
		re, err := regexp.Compile(d.RemovePattern)
		if err != nil {
			errs = append(errs, badPattern(path+".remove_pattern", d.Line, err))
		}
		rule.RemovePattern = re
	}

	if d.BlankOutPattern != "" {
		re, err := regexp.Compile(d.BlankOutPattern)
		switch {
		case err != nil:
			errs = append(errs, badPattern(path+".blank_out_pattern", d.Line, err))
		case re.NumSubexp() < 1:
			errs = append(errs, &CompileError{
				Field:   path + ".blank_out_pattern",
				Code:    ErrCodePatternNoGroup,
				Message: fmt.Sprintf("pattern %q needs a capturing group marking the span to blank out", d.BlankOutPattern),
				Line:    d.Line,
			})
		}
		rule.BlankOutPattern = re
	}

	return rule, errs
}

func compileCharacter(i int, d CharacterRuleDoc) (CharacterRule, Errors) {
	path := fmt.Sprintf("character_rules[%d]", i)
	var errs Errors

	errs = append(errs, required(path, d.Line, map[string]string{
		"source_field":       d.SourceField,
		"source_record_type": d.SourceType,
	})...)

	if len(d.DestinationFields) == 0 {
		errs = append(errs, &CompileError{
			Field:   path + ".destination_fields",
			Code:    ErrCodeNoDestinations,
			Message: "at least one destination field is required",
			Line:    d.Line,
		})
	}
	for j, dest := range d.DestinationFields {
		if strings.TrimSpace(dest) == "" {
			errs = append(errs, &CompileError{
				Field:   fmt.Sprintf("%s.destination_fields[%d]", path, j),
				Code:    ErrCodeMissingField,
				Message: "destination field name is empty",
				Line:    d.Line,
			})
		}
	}

	filterName := d.CharacterFilter
	if filterName == "" {
		filterName = FilterAll
	}
	filter, ok := LookupFilter(filterName)
	if !ok {
		errs = append(errs, &CompileError{
			Field:   path + ".character_filter",
			Code:    ErrCodeUnknownFilter,
			Message: fmt.Sprintf("unknown character filter %q (want one of %s)", d.CharacterFilter, strings.Join(FilterNames, ", ")),
			Line:    d.Line,
		})
	}

	dests := make([]string, len(d.DestinationFields))
	copy(dests, d.DestinationFields)

	rule := CharacterRule{
		Name:              d.Name,
		SourceField:       d.SourceField,
		SourceType:        d.SourceType,
		DestinationFields: dests,
		CopyOnlyIfEmpty:   d.CopyOnlyIfEmpty,
		FilterName:        filterName,
		Filter:            filter,
	}
	if rule.Name == "" {
		rule.Name = d.SourceField + "->" + strings.Join(dests, ",")
	}

	return rule, errs
}

// required reports every empty value in fields, in a stable order.
func required(path string, line int, fields map[string]string) Errors {
	var errs Errors
	for _, key := range []string{"source_field", "destination_field", "source_record_type"} {
		v, ok := fields[key]
		if !ok || strings.TrimSpace(v) != "" {
			continue
		}
		errs = append(errs, &CompileError{
			Field:   path + "." + key,
			Code:    ErrCodeMissingField,
			Message: key + " is required",
			Line:    line,
		})
	}
	return errs
}

func badPattern(field string, line int, err error) *CompileError {
	return &CompileError{
		Field:   field,
		Code:    ErrCodeBadPattern,
		Message: err.Error(),
		Line:    line,
	}
}
