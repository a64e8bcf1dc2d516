// internal/nlp/extractor/extractor_test.go
package extractor

import (
	"strings"
	"testing"
	"time"

	"contract-query-workers/internal/models"
	"contract-query-workers/internal/nlp/normalizer"
	"contract-query-workers/internal/nlp/tokenizer"
	"contract-query-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

func extract(t *testing.T, text string) Extraction {
	t.Helper()
	norm := normalizer.New(registry.DefaultDictionary()).Normalize(text)
	return New(registry.Default()).Extract(Input{
		Original:   text,
		Normalized: norm.Text,
		Tokens:     tokenizer.Tokenize(norm.Text),
		Now:        testNow,
	})
}

func findFilter(filters []models.EntityFilter, attr string) (models.EntityFilter, bool) {
	for _, f := range filters {
		if f.Attribute == attr {
			return f, true
		}
	}
	return models.EntityFilter{}, false
}

func requireFilter(t *testing.T, ex Extraction, attr string, op models.Operation, value string) {
	t.Helper()
	f, ok := findFilter(ex.Filters, attr)
	require.True(t, ok, "missing filter %s in %v", attr, ex.Filters)
	assert.Equal(t, op, f.Operation, attr)
	assert.Equal(t, value, f.Value, attr)
}

// ==========================
// Header Track Tests
// ==========================

func TestExtract_Header(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected models.Header
	}{
		{
			name:     "contract details",
			input:    "Show contract 100476 details",
			expected: models.Header{ContractNumber: "100476"},
		},
		{
			name:     "part and contract",
			input:    "What is the lead time for part EN6114V4-13 in contract 100476?",
			expected: models.Header{ContractNumber: "100476", PartNumber: "EN6114V4-13"},
		},
		{
			name:     "part without contract",
			input:    "What is the lead time for part EN6114V4-13?",
			expected: models.Header{PartNumber: "EN6114V4-13"},
		},
		{
			name:     "account number is a customer",
			input:    "create contract for account 1234567",
			expected: models.Header{CustomerNumber: "1234567"},
		},
		{
			name:     "concatenated contract",
			input:    "show contract100476details",
			expected: models.Header{ContractNumber: "100476"},
		},
		{
			name:     "bare number fallback",
			input:    "what about 123456",
			expected: models.Header{ContractNumber: "123456"},
		},
		{
			name:     "bare number in customer context",
			input:    "show customer 45678 info",
			expected: models.Header{CustomerNumber: "45678"},
		},
		{
			name:     "created by",
			input:    "contracts created by vinod",
			expected: models.Header{CreatedBy: "vinod"},
		},
		{
			name:     "created buy typo",
			input:    "contracts created buy John Smith in 2024",
			expected: models.Header{CreatedBy: "John Smith"},
		},
		{
			name:     "customer name phrase",
			input:    "contracts where customer name is Siemens",
			expected: models.Header{CustomerName: "Siemens"},
		},
		{
			name:     "quoted customer",
			input:    `contracts for customer "Acme Corp"`,
			expected: models.Header{CustomerName: "Acme Corp"},
		},
		{
			name:     "under name",
			input:    "show contracts under siemens",
			expected: models.Header{CustomerName: "siemens"},
		},
		{
			name:     "number no word",
			input:    "contract no 100476",
			expected: models.Header{ContractNumber: "100476"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := extract(t, tt.input)
			assert.Equal(t, tt.expected, ex.Header)
		})
	}
}

func TestExtract_HeaderIssues(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		field   models.HeaderField
		message string
	}{
		{"short contract", "show contract 1234", models.FieldContractNumber, "Contract number '1234' must be 6+ digits"},
		{"short customer", "show customer 12", models.FieldCustomerNumber, "Customer number '12' must be 4-8 digits"},
		{"short part", "price for part A1", models.FieldPartNumber, "Part number 'A1' must be 3+ alphanumeric characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := extract(t, tt.input)
			require.Len(t, ex.Issues, 1)
			assert.Equal(t, tt.field, ex.Issues[0].Field)
			assert.Equal(t, tt.message, ex.Issues[0].Message)
			assert.Equal(t, "", ex.Header.Get(tt.field))
		})
	}
}

// ==========================
// Filter Track Tests
// ==========================

func TestExtract_Identifiers(t *testing.T) {
	ex := extract(t, "What is the lead time for part EN6114V4-13 in contract 100476?")
	requireFilter(t, ex, models.AttrPartNumber, models.OpEquals, "EN6114V4-13")
	requireFilter(t, ex, models.AttrContractNumber, models.OpEquals, "100476")
	_, hasCustomer := findFilter(ex.Filters, models.AttrCustomerNumber)
	assert.False(t, hasCustomer)

	ex = extract(t, "create contract for account 1234567")
	requireFilter(t, ex, models.AttrCustomerNumber, models.OpEquals, "1234567")
	_, hasContract := findFilter(ex.Filters, models.AttrContractNumber)
	assert.False(t, hasContract)
}

func TestExtract_PartRulePriority(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"part prefix wins", "price of part xy-99-1 and AB12345", "XY-99-1"},
		{"two letters five digits", "price for AB12345", "AB12345"},
		{"letter digits", "lead time of A123456", "A123456"},
		{"digits letters", "moq for 12345AB", "12345AB"},
		{"letters dash digits", "uom for ABC-1234", "ABC-1234"},
		{"part number phrase", "part number XK-200 price", "XK-200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := extract(t, tt.input)
			requireFilter(t, ex, models.AttrPartNumber, models.OpEquals, tt.expected)
			assert.Equal(t, tt.expected, ex.Header.PartNumber)
		})
	}
}

func TestExtract_Comparisons(t *testing.T) {
	tests := []struct {
		name  string
		input string
		attr  string
		op    models.Operation
		value string
	}{
		{"symbol", "parts with price > 100 for contract 100476", "PRICE", models.OpGreater, "100"},
		{"words", "parts with price less than 25.50 in contract 100476", "PRICE", models.OpLess, "25.50"},
		{"at least", "parts where moq at least 10 in contract 100476", "MOQ", models.OpGreaterEqual, "10"},
		{"rebate", "contracts with rebate over 200000", "REBATE", models.OpGreater, "200000"},
		{"lead time", "parts with lead time <= 30 in contract 100476", "LEAD_TIME", models.OpLessEqual, "30"},
		{"column identifier", "contracts where LINE_MIN >= 500", "LINE_MIN", models.OpGreaterEqual, "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := extract(t, tt.input)
			requireFilter(t, ex, tt.attr, tt.op, tt.value)
			f, _ := findFilter(ex.Filters, tt.attr)
			assert.Equal(t, models.SourceUserInput, f.Source)
			i := strings.Index(ex.Text, tt.value)
			require.GreaterOrEqual(t, i, 0)
			assert.True(t, ex.InFilter(i, i+len(tt.value)))
		})
	}
}

func TestExtract_FilterValuesAreNotIdentifiers(t *testing.T) {
	ex := extract(t, "contracts with rebate over 200000")
	assert.Equal(t, "", ex.Header.ContractNumber)
	_, ok := findFilter(ex.Filters, models.AttrContractNumber)
	assert.False(t, ok)
}

func TestExtract_IdentifierSharesDigitsWithFilter(t *testing.T) {
	ex := extract(t, "show contract 100476 parts with lead time > 100476")
	assert.Equal(t, "100476", ex.Header.ContractNumber)
	requireFilter(t, ex, "LEAD_TIME", models.OpGreater, "100476")
	requireFilter(t, ex, models.AttrContractNumber, models.OpEquals, "100476")

	ex = extract(t, "contracts for customer 2025 expiring in Q1 2025")
	assert.Equal(t, "2025", ex.Header.CustomerNumber)
	requireFilter(t, ex, "EXPIRATION_DATE", models.OpBetween, "'2025-01-01' AND '2025-03-31'")

	ex = extract(t, "contracts created in 2024 for customer 2024")
	assert.Equal(t, "2024", ex.Header.CustomerNumber)
	requireFilter(t, ex, "CREATE_DATE", models.OpInYear, "2024")
}

func TestInFilter(t *testing.T) {
	ex := Extraction{FilterSpans: []Span{{Start: 10, End: 16}}}

	assert.True(t, ex.InFilter(10, 16))
	assert.True(t, ex.InFilter(12, 20))
	assert.False(t, ex.InFilter(0, 10))
	assert.False(t, ex.InFilter(16, 22))
	assert.False(t, ex.InFilter(-1, 5))
}

func TestOriginalCase(t *testing.T) {
	assert.Equal(t, "Siemens", originalCase("contracts for customer Siemens", "siemens"))
	assert.Equal(t, "ACME", originalCase("acmeco and ACME", "acme"))
	assert.Equal(t, "boeing", originalCase("no match here", "boeing"))
}

func TestTokenOffsets(t *testing.T) {
	text := "show contract 100476 parts with lead time > 100476"
	offsets := tokenOffsets(text, tokenizer.Tokenize(text))

	assert.Equal(t, []int{0, 5, 14, 21, 27, 32, 37, 44}, offsets)
}

func TestExtract_Flags(t *testing.T) {
	ex := extract(t, "show vmi enabled program contracts")
	requireFilter(t, ex, "VMI", models.OpEquals, "true")
	requireFilter(t, ex, "IS_PROGRAM", models.OpEquals, "true")

	ex = extract(t, "Show failed parts for contract 100476")
	requireFilter(t, ex, models.AttrHasFailedParts, models.OpEquals, "true")
	requireFilter(t, ex, models.AttrContractNumber, models.OpEquals, "100476")
	_, hasStatus := findFilter(ex.Filters, models.AttrStatus)
	assert.False(t, hasStatus)

	ex = extract(t, "contracts with type SERVICE")
	requireFilter(t, ex, "CONTRACT_TYPE", models.OpEquals, "SERVICE")

	ex = extract(t, "what type of contracts exist")
	_, hasType := findFilter(ex.Filters, "CONTRACT_TYPE")
	assert.False(t, hasType)
}

func TestExtract_Status(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"show active contracts", "ACTIVE"},
		{"show inactive contracts", "INACTIVE"},
		{"list expired contracts", "EXPIRED"},
		{"pending contracts for customer 12345", "PENDING"},
		{"contracts with failed status", "FAILED"},
		{"contracts where status is active", "ACTIVE"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ex := extract(t, tt.input)
			count := 0
			for _, f := range ex.Filters {
				if f.Attribute == models.AttrStatus {
					count++
					assert.Equal(t, tt.expected, f.Value)
				}
			}
			assert.Equal(t, 1, count)
		})
	}
}

func TestExtract_Dates(t *testing.T) {
	tests := []struct {
		name  string
		input string
		attr  string
		op    models.Operation
		value string
	}{
		{"next month", "contracts expiring next month", "EXPIRATION_DATE", models.OpBetween, "'2025-04-01' AND '2025-04-30'"},
		{"quarter", "contracts expiring in Q2 2025", "EXPIRATION_DATE", models.OpBetween, "'2025-04-01' AND '2025-06-30'"},
		{"created quarter", "contracts created in q1 2024", "CREATE_DATE", models.OpBetween, "'2024-01-01' AND '2024-03-31'"},
		{"within days", "contracts expiring within 30 days", "EXPIRATION_DATE", models.OpBetween, "'2025-03-15' AND '2025-04-14'"},
		{"n-day", "contracts with 90-day expiry window", "EXPIRATION_DATE", models.OpBetween, "'2025-03-15' AND '2025-06-13'"},
		{"in year", "contracts created in 2024", "CREATE_DATE", models.OpInYear, "2024"},
		{"after year", "contracts created after 2022", "CREATE_DATE", models.OpAfterYear, "2022"},
		{"before year", "contracts created before 2020", "CREATE_DATE", models.OpBeforeYear, "2020"},
		{"since year", "contracts created since 2022", "CREATE_DATE", models.OpYearRange, "2022,2025"},
		{"between years", "contracts created between 2020 and 2023", "CREATE_DATE", models.OpYearRange, "2020,2023"},
		{"named month", "contracts created in march 2024", "CREATE_DATE", models.OpMonthRange, "2024-03-01,2024-03-31"},
		{"last month", "contracts created last month", "CREATE_DATE", models.OpMonthRange, "2025-02-01,2025-02-28"},
		{"this year", "contracts created this year", "CREATE_DATE", models.OpInYear, "2025"},
		{"exact date", "contracts created after 2024-06-01", "CREATE_DATE", models.OpGreater, "2024-06-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := extract(t, tt.input)
			requireFilter(t, ex, tt.attr, tt.op, tt.value)
			f, _ := findFilter(ex.Filters, tt.attr)
			assert.Equal(t, models.SourceExtracted, f.Source)
		})
	}
}

func TestExtract_ExactDateDoesNotAddYear(t *testing.T) {
	ex := extract(t, "contracts created after 2024-06-01")
	for _, f := range ex.Filters {
		assert.NotEqual(t, models.OpAfterYear, f.Operation)
	}
}

func TestExtract_NoClockSkipsDates(t *testing.T) {
	ex := New(registry.Default()).Extract(Input{
		Original:   "contracts expiring next month",
		Normalized: "contracts expiring next month",
		Tokens:     tokenizer.Tokenize("contracts expiring next month"),
	})
	_, ok := findFilter(ex.Filters, "EXPIRATION_DATE")
	assert.False(t, ok)
}

// ==========================
// Post-processing Tests
// ==========================

func TestExtract_Dedupe(t *testing.T) {
	ex := extract(t, "contract 100476 and contract 100476 price > 5 price > 5")
	seen := map[string]int{}
	for _, f := range ex.Filters {
		seen[f.Attribute+string(f.Operation)+f.Value]++
	}
	for k, n := range seen {
		assert.Equal(t, 1, n, k)
	}
}

func TestExtract_CreatedByFilter(t *testing.T) {
	ex := extract(t, "contracts created by vinod")
	requireFilter(t, ex, models.AttrCreatedBy, models.OpEquals, "vinod")
}

func TestExtract_EmptyInput(t *testing.T) {
	ex := extract(t, "")
	assert.NotNil(t, ex.Filters)
	assert.Empty(t, ex.Filters)
	assert.Equal(t, models.Header{}, ex.Header)
}
