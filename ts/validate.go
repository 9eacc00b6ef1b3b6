package ts

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/blang/semver"
	"golang.org/x/text/language"
)

// MaxMajorVersion is the newest TS format major version understood here.
const MaxMajorVersion = 2

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule names reported in issues.
const (
	RuleEmptySource        = "empty-source"
	RuleDuplicateKey       = "duplicate-key"
	RuleEmptyTranslation   = "empty-translation"
	RuleEmptyContextName   = "empty-context-name"
	RuleDuplicateContext   = "duplicate-context"
	RuleUnsupportedVersion = "unsupported-version"
	RuleInvalidLanguage    = "invalid-language"
	RuleLocationLine       = "location-line"
	RuleMissingDocType     = "missing-doctype"
)

// Issue is one validation finding.
type Issue struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Context  string   `json:"context,omitempty"`
	Source   string   `json:"source,omitempty"`
	Comment  string   `json:"comment,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]", i.Severity, i.Rule)
	if i.Context != "" {
		fmt.Fprintf(&b, " %s", i.Context)
	}
	if i.Source != "" {
		fmt.Fprintf(&b, " %q", i.Source)
	}
	if i.Comment != "" {
		fmt.Fprintf(&b, " (%s)", i.Comment)
	}
	b.WriteString(": ")
	b.WriteString(i.Message)
	return b.String()
}

// Report collects the issues found in one catalog.
type Report struct {
	Issues []Issue
}

// Errors returns the error-severity issues.
func (r Report) Errors() []Issue {
	return r.bySeverity(SeverityError)
}

// Warnings returns the warning-severity issues.
func (r Report) Warnings() []Issue {
	return r.bySeverity(SeverityWarning)
}

func (r Report) bySeverity(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

// OK reports whether no error-severity issue was found.
func (r Report) OK() bool {
	return len(r.Errors()) == 0
}

// Err joins error-severity issues into one error, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, i := range r.Errors() {
		errs = append(errs, errors.New(i.String()))
	}
	return errors.Join(errs...)
}

// Validate checks c for data-quality problems.
func Validate(c *Catalog) Report {
	var r Report
	if c == nil {
		return r
	}

	r.Issues = append(r.Issues, checkHeader(c)...)

	contexts := make(map[string]bool, len(c.Contexts))
	for _, ctx := range c.Contexts {
		if strings.TrimSpace(ctx.Name) == "" {
			r.add(RuleEmptyContextName, SeverityError, ctx.Name, Message{}, "context has no name")
		} else if contexts[ctx.Name] {
			r.add(RuleDuplicateContext, SeverityWarning, ctx.Name, Message{}, "context name appears more than once")
		}
		contexts[ctx.Name] = true

		seen := make(map[Key]bool, len(ctx.Messages))
		for _, m := range ctx.Messages {
			if m.Source == "" {
				r.add(RuleEmptySource, SeverityError, ctx.Name, m, "message has an empty source")
			}

			k := Key{Context: ctx.Name, Source: m.Source, Comment: m.Comment}
			if seen[k] {
				r.add(RuleDuplicateKey, SeverityError, ctx.Name, m, "duplicate source and comment within context")
			}
			seen[k] = true

			// Only type="unfinished" may be left empty; obsolete and
			// vanished entries keep the text they had.
			if m.Type != TypeUnfinished && !hasText(m) {
				r.add(RuleEmptyTranslation, SeverityError, ctx.Name, m, "translation is empty")
			}

			for _, l := range m.Locations {
				if l.Line == "" {
					continue
				}
				n, ok := l.LineNumber()
				if !ok || (!l.Relative() && n <= 0) {
					r.add(RuleLocationLine, SeverityWarning, ctx.Name, m,
						fmt.Sprintf("location %s has invalid line %q", l.Filename, l.Line))
				}
			}
		}
	}

	return r
}

func hasText(m Message) bool {
	if !m.Numerus {
		return m.Translation != ""
	}
	if len(m.NumerusForms) == 0 {
		return false
	}
	for _, f := range m.NumerusForms {
		if f == "" {
			return false
		}
	}
	return true
}

func checkHeader(c *Catalog) []Issue {
	var issues []Issue

	if c.DocTypeMissing {
		issues = append(issues, Issue{
			Rule:     RuleMissingDocType,
			Severity: SeverityWarning,
			Message:  "document has no <!DOCTYPE TS> declaration",
		})
	}

	if c.Version != "" {
		v, err := semver.ParseTolerant(c.Version)
		switch {
		case err != nil:
			issues = append(issues, Issue{
				Rule:     RuleUnsupportedVersion,
				Severity: SeverityError,
				Message:  fmt.Sprintf("cannot parse TS version %q: %v", c.Version, err),
			})
		case v.Major > MaxMajorVersion:
			issues = append(issues, Issue{
				Rule:     RuleUnsupportedVersion,
				Severity: SeverityError,
				Message:  fmt.Sprintf("TS version %s is newer than %d.x", c.Version, MaxMajorVersion),
			})
		}
	}

	attrs := []struct{ name, value string }{
		{"language", c.Language},
		{"sourcelanguage", c.SourceLanguage},
	}
	for _, a := range attrs {
		attr, value := a.name, a.value
		if value == "" {
			continue
		}
		if _, err := language.Parse(value); err != nil {
			issues = append(issues, Issue{
				Rule:     RuleInvalidLanguage,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("%s attribute %q is not a valid language tag", attr, value),
			})
		}
	}

	return issues
}

func (r *Report) add(rule string, sev Severity, context string, m Message, msg string) {
	r.Issues = append(r.Issues, Issue{
		Rule:     rule,
		Severity: sev,
		Context:  context,
		Source:   m.Source,
		Comment:  m.Comment,
		Message:  msg,
	})
}

// RoundTripError describes the first tuple that did not survive encoding.
type RoundTripError struct {
	Index int
	Want  Tuple
	Got   Tuple
}

func (e *RoundTripError) Error() string {
	return fmt.Sprintf("round-trip mismatch at message %d: want %+v, got %+v", e.Index, e.Want, e.Got)
}

// VerifyRoundTrip encodes and re-decodes c, comparing every
// (context, source, comment, translation, finished) tuple.
func VerifyRoundTrip(c *Catalog) error {
	var buf bytes.Buffer
	if err := Encode(&buf, c); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	back, err := Decode(&buf)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	want, got := c.Tuples(), back.Tuples()
	for i := range want {
		if i >= len(got) {
			return &RoundTripError{Index: i, Want: want[i]}
		}
		if want[i] != got[i] {
			return &RoundTripError{Index: i, Want: want[i], Got: got[i]}
		}
	}
	if len(got) > len(want) {
		return &RoundTripError{Index: len(want), Got: got[len(want)]}
	}
	return nil
}
