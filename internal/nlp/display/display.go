// internal/nlp/display/display.go
//
// Package display picks the columns a caller should show for a query. Rules
// are checked in table order. Exclusive rules end resolution with their own
// field; the rest accumulate.
package display

import (
	"regexp"

	"contract-query-workers/internal/models"
	"contract-query-workers/internal/nlp/lexicon"
	"contract-query-workers/pkg/registry"
)

var (
	ContractDefaults = []string{"CONTRACT_NAME", "CUSTOMER_NAME", "CUSTOMER_NUMBER", "EFFECTIVE_DATE", "EXPIRATION_DATE", "STATUS"}
	PartDefaults     = []string{"INVOICE_PART_NUMBER", "PRICE", "LEAD_TIME", "MOQ", "UOM", "STATUS"}
	FailedPartFields = []string{"PART_NUMBER", "ERROR_COLUMN", "REASON"}

	customerGroup = []string{"CUSTOMER_NAME", "CUSTOMER_NUMBER"}
	partsGroup    = []string{"INVOICE_PART_NUMBER", "PRICE", "LEAD_TIME", "MOQ", "UOM"}
)

const (
	partAnchor     = "INVOICE_PART_NUMBER"
	contractAnchor = "AWARD_NUMBER"
)

type rule struct {
	name      string
	match     func(q *query) bool
	fields    []string
	exclusive bool
}

type query struct {
	text string
	lex  *lexicon.Text
}

func re(pattern string) func(q *query) bool {
	compiled := regexp.MustCompile(`(?i)` + pattern)
	return func(q *query) bool { return compiled.MatchString(q.text) }
}

var customerNumberRe = regexp.MustCompile(`(?i)\bcustomer\s+(?:number|no\b\.?|#|id)\s*[:#]?\s*(\d*)`)

// asksCustomerNumber matches "customer number" when no number follows it,
// i.e. the user wants the column rather than filtering by it.
func asksCustomerNumber(q *query) bool {
	for _, m := range customerNumberRe.FindAllStringSubmatch(q.text, -1) {
		if m[1] == "" {
			return true
		}
	}
	return false
}

var customerFollowers = map[string]struct{}{
	"name": {}, "names": {}, "number": {}, "numbers": {}, "no": {}, "id": {},
}

// mentionsCustomer matches a bare "customer" that is not the head of a
// customer name or number phrase.
func mentionsCustomer(q *query) bool {
	words := q.lex.Words
	for i, w := range words {
		if w != "customer" && w != "customers" {
			continue
		}
		if i+1 == len(words) {
			return true
		}
		next := words[i+1]
		if _, ok := customerFollowers[next]; ok || isDigits(next) {
			continue
		}
		return true
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

var rules = []rule{
	{name: "payment_terms", match: re(`\bpay(?:ment|met|ement)\s+terms?\b`), fields: []string{"PAYMENT_TERMS"}, exclusive: true},
	{name: "incoterms", match: re(`\binco(?:terms?|tems)\b`), fields: []string{"INCOTERMS"}, exclusive: true},
	{name: "contract_length", match: re(`\bcontract\s+(?:length|lenght|duration)\b`), fields: []string{"CONTRACT_LENGTH"}, exclusive: true},
	{name: "price_expiration", match: func(q *query) bool { return lexicon.MentionsPriceExpiration(q.lex) }, fields: []string{"PRICE_EXPIRATION_DATE"}, exclusive: true},
	{name: "customer_number", match: asksCustomerNumber, fields: []string{"CUSTOMER_NUMBER"}, exclusive: true},

	{name: "customer_group", match: mentionsCustomer, fields: customerGroup},
	{name: "parts_group", match: func(q *query) bool { return q.lex.Has("parts") }, fields: partsGroup},
	{name: "effective_date", match: re(`\beffective\b|\bstart\s+date\b`), fields: []string{"EFFECTIVE_DATE"}},
	{name: "expiration_date", match: re(`\bexpir\w*|\bend\s+date\b`), fields: []string{"EXPIRATION_DATE"}},
	{name: "create_date", match: re(`\bcreat(?:e|ed|ion)\s+date\b`), fields: []string{"CREATE_DATE"}},
	{name: "contract_type", match: re(`\btypes?\b`), fields: []string{"CONTRACT_TYPE"}},
	{name: "status", match: re(`\bstatus\b`), fields: []string{"STATUS"}},
	{name: "lead_time", match: re(`\blead\s*times?\b`), fields: []string{"LEAD_TIME"}},
	{name: "price", match: re(`\bpric(?:e|es|ing)\b|\bcosts?\b`), fields: []string{"PRICE"}},
	{name: "moq", match: re(`\bmoq\b|\bmin(?:imum)?\s+order\b`), fields: []string{"MOQ"}},
	{name: "uom", match: re(`\buom\b|\bunit\s+of\s+measure\b`), fields: []string{"UOM"}},
	{name: "item_classification", match: re(`\bitem\s+class`), fields: []string{"ITEM_CLASSIFICATION"}},
	{name: "customer_name", match: re(`\bcustomer\s+names?\b`), fields: []string{"CUSTOMER_NAME"}},
	{name: "created_by", match: re(`\bwho\s+created\b|\bcreator\b`), fields: []string{"CREATED_BY"}},
	{name: "error_column", match: re(`\berror\s+columns?\b`), fields: []string{"ERROR_COLUMN"}},
	{name: "reason", match: re(`\breasons?\b|\bwhy\b`), fields: []string{"REASON"}},
}

var genericRe = regexp.MustCompile(`(?i)\b(?:details?|info|information|summary|overview)\b`)

// Resolver filters rule output through the column registry.
type Resolver struct {
	registry registry.ColumnRegistry
}

func New(reg registry.ColumnRegistry) *Resolver {
	return &Resolver{registry: reg}
}

// Defaults returns the default field list for a query type.
func Defaults(qt models.QueryType) []string {
	switch qt {
	case models.QueryTypeParts:
		return PartDefaults
	case models.QueryTypeContracts:
		return ContractDefaults
	}
	return nil
}

// Resolve returns ordered, unique display fields that are columns of table.
// An empty table accepts any registered column. It never returns nil.
func (r *Resolver) Resolve(act models.ActionType, qt models.QueryType, table, text string) []string {
	switch {
	case act == models.ActionPartsFailedByContractNumber:
		return r.known(table, FailedPartFields)
	case qt == models.QueryTypeHelp || act.IsHelp():
		return []string{}
	}

	q := &query{text: text, lex: lexicon.Analyze(text)}
	var fields []string
	explicit := false
	for _, rl := range rules {
		if !rl.match(q) {
			continue
		}
		if rl.exclusive {
			return r.known(table, rl.fields)
		}
		fields = append(fields, rl.fields...)
		explicit = true
	}
	if genericRe.MatchString(text) {
		fields = append(fields, Defaults(qt)...)
	}

	switch {
	case len(fields) == 0:
		fields = Defaults(qt)
	case explicit && qt == models.QueryTypeParts:
		fields = append([]string{partAnchor}, fields...)
	case explicit && act == models.ActionContractsByFilter:
		fields = append([]string{contractAnchor}, fields...)
	}
	return r.known(table, fields)
}

// known drops columns outside table and duplicates, keeping first positions.
func (r *Resolver) known(table string, fields []string) []string {
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		if r.registry != nil && !r.inTable(table, f) {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func (r *Resolver) inTable(table, column string) bool {
	if table == "" {
		return r.registry.IsKnownColumn(column)
	}
	return r.registry.IsValidColumn(table, column)
}
