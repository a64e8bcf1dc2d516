// internal/nlp/rules/rules_test.go
package rules

import (
	"testing"

	"contract-query-workers/internal/models"
	"contract-query-workers/internal/nlp/classifier"
	"contract-query-workers/internal/nlp/extractor"
	"contract-query-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func filter(attr, value string) models.EntityFilter {
	return models.NewFilter(attr, models.OpEquals, value)
}

func attrs(filters []models.EntityFilter) []string {
	out := make([]string, 0, len(filters))
	for _, f := range filters {
		out = append(out, f.Attribute)
	}
	return out
}

func classification(qt models.QueryType) classifier.Classification {
	return classifier.Classification{QueryType: qt, Subject: qt}
}

// ==========================
// Table Selection Tests
// ==========================

func TestTableFor(t *testing.T) {
	tests := []struct {
		name     string
		action   models.ActionType
		cls      classifier.Classification
		expected string
	}{
		{"contracts by number", models.ActionContractsByContractNumber, classification(models.QueryTypeContracts), registry.TableContracts},
		{"contracts by filter", models.ActionContractsByFilter, classification(models.QueryTypeContracts), registry.TableContracts},
		{"update", models.ActionUpdateContract, classification(models.QueryTypeContracts), registry.TableContracts},
		{"create", models.ActionCreateContract, classification(models.QueryTypeHelp), registry.TableContracts},
		{"error", models.ActionError, classification(models.QueryTypeContracts), registry.TableContracts},
		{"parts by contract", models.ActionPartsByContractNumber, classification(models.QueryTypeParts), registry.TableParts},
		{"parts by part", models.ActionPartsByPartNumber, classification(models.QueryTypeParts), registry.TableParts},
		{"parts by filter", models.ActionPartsByFilter, classification(models.QueryTypeParts), registry.TableParts},
		{"failed parts", models.ActionPartsFailedByContractNumber, classification(models.QueryTypeParts), registry.TableFailedParts},
		{
			"help about parts",
			models.ActionHelpUser,
			classifier.Classification{QueryType: models.QueryTypeHelp, Subject: models.QueryTypeParts},
			registry.TableParts,
		},
		{
			"help about failed parts",
			models.ActionHelpUser,
			classifier.Classification{QueryType: models.QueryTypeHelp, Subject: models.QueryTypeParts, FailedParts: true},
			registry.TableFailedParts,
		},
		{
			"help about contracts",
			models.ActionHelpBot,
			classifier.Classification{QueryType: models.QueryTypeHelp, Subject: models.QueryTypeContracts},
			registry.TableContracts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TableFor(tt.action, tt.cls))
		})
	}
}

// ==========================
// Filter Mapping Tests
// ==========================

func TestApply_RemapsContractNumberPerTable(t *testing.T) {
	v := New(registry.Default())
	in := []models.EntityFilter{filter(models.AttrContractNumber, "100476")}

	tests := []struct {
		action   models.ActionType
		cls      classifier.Classification
		expected string
	}{
		{models.ActionContractsByContractNumber, classification(models.QueryTypeContracts), "AWARD_NUMBER"},
		{models.ActionPartsByContractNumber, classification(models.QueryTypeParts), "LOADED_CP_NUMBER"},
		{models.ActionPartsFailedByContractNumber, classifier.Classification{QueryType: models.QueryTypeParts, FailedParts: true}, "CONTRACT_NO"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			out := v.Apply(Request{Action: tt.action, Classification: tt.cls, Filters: in, Text: "contract 100476"})
			f, ok := findAttr(out.Filters, tt.expected)
			require.True(t, ok, "filters: %v", out.Filters)
			assert.Equal(t, "100476", f.Value)
		})
	}
	assert.Equal(t, models.AttrContractNumber, in[0].Attribute, "input must not be modified")
}

func findAttr(filters []models.EntityFilter, attr string) (models.EntityFilter, bool) {
	for _, f := range filters {
		if f.Attribute == attr {
			return f, true
		}
	}
	return models.EntityFilter{}, false
}

func TestApply_PartNumberPerTable(t *testing.T) {
	v := New(registry.Default())
	in := []models.EntityFilter{
		filter(models.AttrPartNumber, "EN6114V4-13"),
		filter(models.AttrContractNumber, "100476"),
	}

	out := v.Apply(Request{Action: models.ActionPartsByPartNumber, Classification: classification(models.QueryTypeParts), Filters: in})
	assert.Equal(t, []string{"INVOICE_PART_NUMBER", "LOADED_CP_NUMBER"}, attrs(out.Filters))

	// The contracts table has no part column.
	out = v.Apply(Request{Action: models.ActionContractsByContractNumber, Classification: classification(models.QueryTypeContracts), Filters: in})
	assert.Equal(t, []string{"AWARD_NUMBER"}, attrs(out.Filters))
}

func TestApply_KeepsFirstContractNumber(t *testing.T) {
	v := New(registry.Default())
	out := v.Apply(Request{
		Action:         models.ActionContractsByContractNumber,
		Classification: classification(models.QueryTypeContracts),
		Filters: []models.EntityFilter{
			filter("AWARD_NUMBER", "100476"),
			filter(models.AttrContractNumber, "200500"),
			filter("LOADED_CP_NUMBER", "300600"),
		},
	})
	require.Len(t, out.Filters, 1)
	assert.Equal(t, "AWARD_NUMBER", out.Filters[0].Attribute)
	assert.Equal(t, "100476", out.Filters[0].Value)
}

func TestApply_DropsUnregisteredAttributes(t *testing.T) {
	v := New(registry.Default())
	out := v.Apply(Request{
		Action:         models.ActionContractsByFilter,
		Classification: classification(models.QueryTypeContracts),
		Filters: []models.EntityFilter{
			filter("STATUS", "ACTIVE"),
			{Attribute: "PRICE", Operation: models.OpGreater, Value: "100", Source: models.SourceUserInput},
			filter("NOT_A_COLUMN", "x"),
		},
		Text: "active contracts with price > 100",
	})
	assert.Equal(t, []string{"STATUS"}, attrs(out.Filters))
	assert.Empty(t, out.Errors)
}

func TestApply_RemapsDateColumnsPerTable(t *testing.T) {
	v := New(registry.Default())
	in := []models.EntityFilter{
		models.NewFilter("EXPIRATION_DATE", models.OpBetween, "'2025-03-15' AND '2025-04-14'"),
		models.NewFilter("CREATE_DATE", models.OpInYear, "2024"),
		filter(models.AttrContractNumber, "100030"),
	}

	tests := []struct {
		name     string
		action   models.ActionType
		cls      classifier.Classification
		expected []string
	}{
		{"parts", models.ActionPartsByContractNumber, classification(models.QueryTypeParts), []string{"PART_EXPIRATION_DATE", "CREATION_DATE", "LOADED_CP_NUMBER"}},
		{"contracts", models.ActionContractsByContractNumber, classification(models.QueryTypeContracts), []string{"EXPIRATION_DATE", "CREATE_DATE", "AWARD_NUMBER"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := v.Apply(Request{Action: tt.action, Classification: tt.cls, Filters: in})
			assert.Equal(t, tt.expected, attrs(out.Filters))
			assert.Equal(t, "EXPIRATION_DATE", in[0].Attribute)
		})
	}
}

func TestApply_DedupeIgnoresOperation(t *testing.T) {
	v := New(registry.Default())
	out := v.Apply(Request{
		Action:         models.ActionPartsByContractNumber,
		Classification: classification(models.QueryTypeParts),
		Filters: []models.EntityFilter{
			{Attribute: "PRICE", Operation: models.OpGreater, Value: "100", Source: models.SourceUserInput},
			{Attribute: "PRICE", Operation: models.OpGreaterEqual, Value: "100", Source: models.SourceUserInput},
			{Attribute: "PRICE", Operation: models.OpLess, Value: "500", Source: models.SourceUserInput},
			filter(models.AttrContractNumber, "100476"),
		},
	})
	require.Len(t, out.Filters, 3)
	assert.Equal(t, models.OpGreater, out.Filters[0].Operation)
	assert.Equal(t, "500", out.Filters[1].Value)
}

func TestApply_AddsFailedPartsFlag(t *testing.T) {
	v := New(registry.Default())
	out := v.Apply(Request{
		Action:         models.ActionPartsFailedByContractNumber,
		Classification: classifier.Classification{QueryType: models.QueryTypeParts, Subject: models.QueryTypeParts, FailedParts: true},
		Filters:        []models.EntityFilter{filter(models.AttrContractNumber, "100476")},
		Text:           "failed parts for contract 100476",
	})
	assert.Equal(t, []string{"CONTRACT_NO", models.AttrHasFailedParts}, attrs(out.Filters))
	f, _ := findAttr(out.Filters, models.AttrHasFailedParts)
	assert.Equal(t, "true", f.Value)
	assert.Empty(t, out.Errors)
}

// ==========================
// Validation Error Tests
// ==========================

func TestApply_Errors(t *testing.T) {
	v := New(registry.Default())

	tests := []struct {
		name     string
		req      Request
		expected []models.ValidationError
	}{
		{
			name: "missing contract for parts",
			req: Request{
				Action:         models.ActionHelpUser,
				Classification: classifier.Classification{QueryType: models.QueryTypeHelp, Subject: models.QueryTypeParts, NeedsContract: true},
				Header:         models.Header{PartNumber: "EN6114V4-13"},
				Filters:        []models.EntityFilter{filter(models.AttrPartNumber, "EN6114V4-13")},
				Text:           "What is the lead time for part EN6114V4-13?",
			},
			expected: []models.ValidationError{
				{Code: models.CodeMissingHeader, Message: MsgContractRequired, Severity: models.SeverityBlocker},
			},
		},
		{
			name: "no evidence",
			req: Request{
				Action:         models.ActionContractsByFilter,
				Classification: classification(models.QueryTypeContracts),
				Text:           "hello there",
			},
			expected: []models.ValidationError{
				{Code: models.CodeMissingHeader, Message: MsgNoEvidence, Severity: models.SeverityBlocker},
			},
		},
		{
			name: "domain keyword is enough",
			req: Request{
				Action:         models.ActionContractsByFilter,
				Classification: classification(models.QueryTypeContracts),
				Text:           "show me contracts",
			},
			expected: []models.ValidationError{},
		},
		{
			name: "help never needs evidence",
			req: Request{
				Action:         models.ActionHelpUser,
				Classification: classification(models.QueryTypeHelp),
				Text:           "how does this work",
			},
			expected: []models.ValidationError{},
		},
		{
			name: "header issues are warnings",
			req: Request{
				Action:         models.ActionContractsByFilter,
				Classification: classification(models.QueryTypeContracts),
				Issues: []extractor.Issue{
					{Field: models.FieldContractNumber, Value: "1234", Message: "Contract number '1234' must be 6+ digits"},
				},
				Text: "show contract 1234",
			},
			expected: []models.ValidationError{
				{Code: models.CodeInvalidHeader, Message: "Contract number '1234' must be 6+ digits", Severity: models.SeverityWarning},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := v.Apply(tt.req)
			assert.Equal(t, tt.expected, out.Errors)
		})
	}
}
