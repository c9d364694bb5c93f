package rule

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
)

// Text-content checks adapted from the teacher's guardrail evaluation
// engine (internal/guardrails/guardrails.go), re-expressed as CustomCheck
// predicates over an accessor-extracted string rather than a configured
// []models.Guardrail slice — each check kind becomes its own constructor
// instead of a runtime-dispatched Kind field, matching this package's
// one-constructor-per-rule-kind shape.

// ContentFilter fails if accessor(payload) contains any of blocked, a
// case-insensitive substring match unless caseSensitive is set.
func ContentFilter[M any](accessor func(M) string, blocked []string, caseSensitive bool) Rule[M] {
	return CustomCheck(func(_ ictx.CustomCheckArgs, payload M) error {
		text := accessor(payload)
		check := text
		if !caseSensitive {
			check = strings.ToLower(check)
		}
		for _, word := range blocked {
			w := word
			if !caseSensitive {
				w = strings.ToLower(w)
			}
			if strings.Contains(check, w) {
				return fmt.Errorf("blocked content detected")
			}
		}
		return nil
	})
}

var piiPatterns = map[string]*regexp.Regexp{
	"email":       regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
	"phone":       regexp.MustCompile(`(\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	"ssn":         regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	"credit_card": regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{4}\b`),
}

// PIIDetection fails if accessor(payload) matches any of the named
// built-in PII patterns (email, phone, ssn, credit_card); an empty
// patterns list checks all of them.
func PIIDetection[M any](accessor func(M) string, patterns []string) Rule[M] {
	if len(patterns) == 0 {
		for name := range piiPatterns {
			patterns = append(patterns, name)
		}
	}
	return CustomCheck(func(_ ictx.CustomCheckArgs, payload M) error {
		text := accessor(payload)
		for _, name := range patterns {
			re, ok := piiPatterns[name]
			if !ok {
				continue
			}
			if re.MatchString(text) {
				return fmt.Errorf("pii detected: %s pattern matched", name)
			}
		}
		return nil
	})
}

// TopicRestriction fails if accessor(payload) contains a blocked-topic
// keyword, or (when allowed is non-empty) contains none of the
// allowed-topic keywords.
func TopicRestriction[M any](accessor func(M) string, allowed, blocked []string) Rule[M] {
	return CustomCheck(func(_ ictx.CustomCheckArgs, payload M) error {
		lower := strings.ToLower(accessor(payload))
		for _, topic := range blocked {
			if strings.Contains(lower, strings.ToLower(topic)) {
				return fmt.Errorf("blocked topic detected: %s", topic)
			}
		}
		if len(allowed) > 0 {
			for _, topic := range allowed {
				if strings.Contains(lower, strings.ToLower(topic)) {
					return nil
				}
			}
			return fmt.Errorf("message does not match any allowed topic")
		}
		return nil
	})
}

// MaxLength fails if accessor(payload) exceeds maxChars runes or maxWords
// whitespace-delimited words; a zero bound is unchecked.
func MaxLength[M any](accessor func(M) string, maxChars, maxWords int) Rule[M] {
	return CustomCheck(func(_ ictx.CustomCheckArgs, payload M) error {
		text := accessor(payload)
		if maxChars > 0 && utf8.RuneCountInString(text) > maxChars {
			return fmt.Errorf("message exceeds maximum character limit of %d", maxChars)
		}
		if maxWords > 0 && len(strings.Fields(text)) > maxWords {
			return fmt.Errorf("message exceeds maximum word limit of %d", maxWords)
		}
		return nil
	})
}

// RegexRequired controls whether RegexFilter blocks on match or requires one.
type RegexRequired bool

const (
	RegexBlockOnMatch    RegexRequired = true
	RegexRequireMatch    RegexRequired = false
)

// RegexFilter compiles pattern once at registration time and fails
// depending on mode: RegexBlockOnMatch fails when pattern matches;
// RegexRequireMatch fails when it doesn't.
func RegexFilter[M any](accessor func(M) string, pattern string, mode RegexRequired) (Rule[M], error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("rule: compile regex filter %q: %w", pattern, err)
	}
	return CustomCheck(func(_ ictx.CustomCheckArgs, payload M) error {
		matched := re.MatchString(accessor(payload))
		if matched && bool(mode) {
			return fmt.Errorf("content matched blocked pattern")
		}
		if !matched && !bool(mode) {
			return fmt.Errorf("content did not match required pattern")
		}
		return nil
	}), nil
}

var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+(instructions?|prompts?|rules?|directions?)`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above)\s+(instructions?|prompts?|rules?)`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?(previous|prior|above|your)\s+(instructions?|prompts?|rules?|context)`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+(a|an|my)\s+`),
	regexp.MustCompile(`(?i)new\s+instructions?:\s*`),
	regexp.MustCompile(`(?i)system\s*:\s*you\s+are`),
	regexp.MustCompile(`(?i)\bdo\s+anything\s+now\b`),
	regexp.MustCompile(`(?i)\bjailbreak\b`),
	regexp.MustCompile(`(?i)pretend\s+you\s+(are|have)\s+no\s+(restrictions?|rules?|guidelines?)`),
	regexp.MustCompile(`(?i)act\s+as\s+if\s+you\s+have\s+no\s+(restrictions?|rules?|filters?)`),
}

var highSensitivityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)override\s+(your|the|all)\s+`),
	regexp.MustCompile(`(?i)bypass\s+(your|the|all)\s+`),
	regexp.MustCompile(`(?i)reveal\s+(your|the)\s+(system\s+)?(prompt|instructions?)`),
	regexp.MustCompile(`(?i)what\s+(is|are)\s+your\s+(system\s+)?(prompt|instructions?|rules?)`),
	regexp.MustCompile(`(?i)repeat\s+(your|the)\s+(system\s+)?(prompt|instructions?)\s+verbatim`),
}

// PromptInjection applies the same heuristic pattern set the teacher's
// guardrail engine used for LLM-bound traffic; here it guards a canister
// method's text argument instead of a model prompt. sensitivity "high"
// also checks highSensitivityPatterns.
func PromptInjection[M any](accessor func(M) string, sensitivity string) Rule[M] {
	return CustomCheck(func(_ ictx.CustomCheckArgs, payload M) error {
		text := accessor(payload)
		for _, re := range injectionPatterns {
			if re.MatchString(text) {
				return fmt.Errorf("potential prompt injection detected")
			}
		}
		if sensitivity == "high" {
			for _, re := range highSensitivityPatterns {
				if re.MatchString(text) {
					return fmt.Errorf("potential prompt injection detected (high sensitivity)")
				}
			}
		}
		return nil
	})
}
