// internal/nlp/rules/rules.go
//
// Package rules enforces the business rules that depend on the resolved
// action: which table the filters address, how identifier attributes are
// named in that table, and whether the query carries enough evidence to run.
package rules

import (
	"strings"

	"contract-query-workers/internal/models"
	"contract-query-workers/internal/nlp/classifier"
	"contract-query-workers/internal/nlp/extractor"
	"contract-query-workers/internal/nlp/lexicon"
	"contract-query-workers/pkg/registry"
)

const (
	MsgContractRequired = "A contract number is required to look up parts data"
	MsgNoEvidence       = "Provide at least one identifier (contract/part/customer) or filter (date/status)"
)

// identifierTerms maps every attribute that can carry an identifier to the
// business term used to find its physical column.
var identifierTerms = map[string]string{
	models.AttrContractNumber: registry.TermContractNumber,
	"AWARD_NUMBER":            registry.TermContractNumber,
	"LOADED_CP_NUMBER":        registry.TermContractNumber,
	"CONTRACT_NO":             registry.TermContractNumber,
	models.AttrPartNumber:     registry.TermPartNumber,
	"INVOICE_PART_NUMBER":     registry.TermPartNumber,
	models.AttrCustomerNumber: registry.TermCustomerNumber,
}

// dateTerms maps the date attributes the extractor emits to the business
// term that names the matching column in each table.
var dateTerms = map[string]string{
	"EXPIRATION_DATE": "expiration date",
	"CREATE_DATE":     "creation date",
}

// Request is everything the validator needs about one query.
type Request struct {
	Action         models.ActionType
	Classification classifier.Classification
	Header         models.Header
	Filters        []models.EntityFilter
	Issues         []extractor.Issue
	Text           string
}

// Outcome is the validated filter list plus diagnostics.
type Outcome struct {
	Table   string
	Filters []models.EntityFilter
	Errors  []models.ValidationError
}

type Validator struct {
	registry registry.ColumnRegistry
}

func New(reg registry.ColumnRegistry) *Validator {
	return &Validator{registry: reg}
}

// TableFor returns the logical table an action reads. Help actions use the
// subject the classifier recorded.
func TableFor(act models.ActionType, cls classifier.Classification) string {
	switch act {
	case models.ActionPartsFailedByContractNumber:
		return registry.TableFailedParts
	case models.ActionPartsByContractNumber, models.ActionPartsByPartNumber, models.ActionPartsByFilter:
		if cls.FailedParts {
			return registry.TableFailedParts
		}
		return registry.TableParts
	case models.ActionHelpUser, models.ActionHelpBot:
		if cls.Subject == models.QueryTypeParts {
			if cls.FailedParts {
				return registry.TableFailedParts
			}
			return registry.TableParts
		}
	}
	return registry.TableContracts
}

// Apply never fails. Problems are reported in Outcome.Errors.
func (v *Validator) Apply(req Request) Outcome {
	table := TableFor(req.Action, req.Classification)

	filters := req.Filters
	if req.Classification.FailedParts && !hasFailedPartsFilter(filters) {
		filters = append(append([]models.EntityFilter(nil), filters...), models.EntityFilter{
			Attribute: models.AttrHasFailedParts,
			Operation: models.OpEquals,
			Value:     "true",
			Source:    models.SourceUserInput,
		})
	}

	filters = v.dedupe(v.validColumns(table, v.remap(table, filters)))

	return Outcome{
		Table:   table,
		Filters: filters,
		Errors:  v.errors(req, filters),
	}
}

// remap renames identifier and date attributes to the table's column. Only
// the first contract-number filter survives.
func (v *Validator) remap(table string, filters []models.EntityFilter) []models.EntityFilter {
	out := make([]models.EntityFilter, 0, len(filters))
	seenContract := false
	for _, f := range filters {
		if term, isDate := dateTerms[f.Attribute]; isDate {
			if col, ok := v.registry.ColumnForBusinessTerm(table, term); ok {
				f.Attribute = col
			}
			out = append(out, f)
			continue
		}
		term, isIdentifier := identifierTerms[f.Attribute]
		if !isIdentifier {
			out = append(out, f)
			continue
		}
		if term == registry.TermContractNumber {
			if seenContract {
				continue
			}
			seenContract = true
		}
		col, ok := v.registry.ColumnForBusinessTerm(table, term)
		if !ok {
			continue
		}
		f.Attribute = col
		out = append(out, f)
	}
	return out
}

func (v *Validator) validColumns(table string, filters []models.EntityFilter) []models.EntityFilter {
	out := make([]models.EntityFilter, 0, len(filters))
	for _, f := range filters {
		if v.registry.IsValidColumn(table, f.Attribute) {
			out = append(out, f)
		}
	}
	return out
}

// dedupe keys on (attribute, value) and ignores the operation.
func (v *Validator) dedupe(filters []models.EntityFilter) []models.EntityFilter {
	type key struct{ attr, value string }
	seen := make(map[key]struct{}, len(filters))
	out := make([]models.EntityFilter, 0, len(filters))
	for _, f := range filters {
		k := key{f.Attribute, strings.ToUpper(f.Value)}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	return out
}

func (v *Validator) errors(req Request, filters []models.EntityFilter) []models.ValidationError {
	errs := make([]models.ValidationError, 0, len(req.Issues)+1)
	for _, is := range req.Issues {
		errs = append(errs, models.ValidationError{
			Code:     models.CodeInvalidHeader,
			Message:  is.Message,
			Severity: models.SeverityWarning,
		})
	}

	switch {
	case req.Classification.NeedsContract:
		errs = append(errs, models.ValidationError{
			Code:     models.CodeMissingHeader,
			Message:  MsgContractRequired,
			Severity: models.SeverityBlocker,
		})
	case req.Classification.QueryType != models.QueryTypeHelp &&
		len(filters) == 0 &&
		!req.Header.HasIdentifier() &&
		!lexicon.HasDomainKeyword(lexicon.Analyze(req.Text)):
		errs = append(errs, models.ValidationError{
			Code:     models.CodeMissingHeader,
			Message:  MsgNoEvidence,
			Severity: models.SeverityBlocker,
		})
	}
	return errs
}

func hasFailedPartsFilter(filters []models.EntityFilter) bool {
	for _, f := range filters {
		if f.Attribute == models.AttrHasFailedParts {
			return true
		}
	}
	return false
}
