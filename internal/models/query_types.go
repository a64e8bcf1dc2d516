// internal/models/query_types.go
package models

// QueryType is the coarse intent of a query.
type QueryType string

const (
	QueryTypeContracts QueryType = "CONTRACTS"
	QueryTypeParts     QueryType = "PARTS"
	QueryTypeHelp      QueryType = "HELP"
)

// QueryTypes lists every QueryType in a stable order.
var QueryTypes = []QueryType{QueryTypeContracts, QueryTypeParts, QueryTypeHelp}

func (q QueryType) Valid() bool {
	switch q {
	case QueryTypeContracts, QueryTypeParts, QueryTypeHelp:
		return true
	}
	return false
}

// ActionType names the downstream data-access routine for a query.
type ActionType string

const (
	ActionContractsByContractNumber   ActionType = "contracts_by_contractnumber"
	ActionContractsByFilter           ActionType = "contracts_by_filter"
	ActionPartsByContractNumber       ActionType = "parts_by_contract_number"
	ActionPartsByPartNumber           ActionType = "parts_by_part_number"
	ActionPartsFailedByContractNumber ActionType = "parts_failed_by_contract_number"
	ActionPartsByFilter               ActionType = "parts_by_filter"
	ActionUpdateContract              ActionType = "update_contract"
	ActionCreateContract              ActionType = "create_contract"
	ActionHelpUser                    ActionType = "help_user"
	ActionHelpBot                     ActionType = "help_bot"

	// ActionError is only used on PROCESSING_ERROR results.
	ActionError ActionType = "error"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionContractsByContractNumber, ActionContractsByFilter,
		ActionPartsByContractNumber, ActionPartsByPartNumber, ActionPartsFailedByContractNumber, ActionPartsByFilter,
		ActionUpdateContract, ActionCreateContract,
		ActionHelpUser, ActionHelpBot, ActionError:
		return true
	}
	return false
}

// IsHelp reports whether the action answers with guidance instead of data.
func (a ActionType) IsHelp() bool {
	return a == ActionHelpUser || a == ActionHelpBot
}

// Operation is the comparison carried by an EntityFilter.
type Operation string

const (
	OpEquals       Operation = "="
	OpGreater      Operation = ">"
	OpLess         Operation = "<"
	OpGreaterEqual Operation = ">="
	OpLessEqual    Operation = "<="
	OpBetween      Operation = "BETWEEN"
	OpInYear       Operation = "IN_YEAR"
	OpAfterYear    Operation = "AFTER_YEAR"
	OpBeforeYear   Operation = "BEFORE_YEAR"
	OpYearRange    Operation = "YEAR_RANGE"
	OpMonthRange   Operation = "MONTH_RANGE"
)

// ParseOperation maps a comparison token such as ">=" to an Operation.
func ParseOperation(s string) (Operation, bool) {
	switch op := Operation(s); op {
	case OpEquals, OpGreater, OpLess, OpGreaterEqual, OpLessEqual,
		OpBetween, OpInYear, OpAfterYear, OpBeforeYear, OpYearRange, OpMonthRange:
		return op, true
	}
	return "", false
}

// Source records where a filter came from.
type Source string

const (
	SourceUserInput Source = "user_input"
	SourceExtracted Source = "extracted"
)

// Severity of a ValidationError.
type Severity string

const (
	SeverityBlocker Severity = "BLOCKER"
	SeverityWarning Severity = "WARNING"
)

// Logical identifier attributes emitted by extraction. The business rule
// validator maps them onto the physical column of the target table.
const (
	AttrContractNumber = "CONTRACT_NUMBER"
	AttrPartNumber     = "PART_NUMBER"
	AttrCustomerNumber = "CUSTOMER_NUMBER"
	AttrCustomerName   = "CUSTOMER_NAME"
	AttrHasFailedParts = "HAS_FAILED_PARTS"
	AttrCreatedBy      = "CREATED_BY"
	AttrStatus         = "STATUS"
)

// Codes carried in QueryResult.Errors.
const (
	CodeParseError      = "PARSE_ERROR"
	CodeProcessingError = "PROCESSING_ERROR"
	CodeMissingHeader   = "MISSING_HEADER"
	CodeInvalidHeader   = "INVALID_HEADER"
)
