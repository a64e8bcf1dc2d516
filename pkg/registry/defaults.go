// pkg/registry/defaults.go
package registry

// Logical table names.
const (
	TableContracts   = "contracts"
	TableParts       = "parts"
	TableFailedParts = "failed_parts"
)

// Business terms every table may map. Extraction emits these through the
// logical identifier attributes.
const (
	TermContractNumber = "contract_number"
	TermPartNumber     = "part_number"
	TermCustomerNumber = "customer_number"
)

var contractColumns = []string{
	"EXP_NOTIF_SENT_90", "EXP_NOTIF_SENT_60", "EXP_NOTIF_SENT_30", "EXP_NOTIF_FEEDBACK",
	"ADDL_OPPORTUNITIES", "MIN_INV_OBLIGATION", "CREATED_BY", "UPDATED_BY",
	"UPDATED_DATE", "IS_PROGRAM", "IS_HPP_UNPRICED_CONTRACT", "AWARD_NUMBER",
	"CONTRACT_NAME", "CUSTOMER_NAME", "CUSTOMER_NUMBER", "ALTERNATE_CUSTOMERS",
	"EFFECTIVE_DATE", "EXPIRATION_DATE", "PRICE_EXPIRATION_DATE", "CONTRACT_LENGTH",
	"PAYMENT_TERMS", "INCOTERMS", "PROGRAM_INFORMATION", "CMI", "VMI", "BAILMENT",
	"CONSIGNMENT", "EDI", "MIN_MAX", "KITTING", "PL_3", "PL_4", "FSL_LOCATION",
	"VENDING_MACHINES", "SERVICE_FEE_APPLIES", "CURRENCY", "E_COMMERCE_ACCESS",
	"ULTIMATE_DESTINATION", "GT_25", "PART_FILE", "PMA_TSO_APPLIES", "DFAR_APPLIES",
	"ASL_APPLIES", "ASL_DETAIL", "STOCKING_STRATEGY", "LIABILITY_ON_INVESTMENT",
	"HPP_LANGUAGE", "CSM_LANGUAGE", "D_ITEM_LANGUAGE", "REBATE", "LINE_MIN",
	"ORDER_MIN", "EFFECTIVE_LOL", "PENALTIES_DAMAGES", "UNUSUAL_TITLE_TRANSFER",
	"RIGHTS_OF_RETURN", "INCENTIVES_CREDITS", "CANCELLATION_PRIVILEGES",
	"BILL_AND_HOLD", "BUY_BACK", "CREATE_DATE", "PROCESS_FLAG", "OPPORTUNITY_NUMBER",
	"CONTRACT_TYPE", "COMPLETENESS_CHECK", "WAREHOUSE_INFO", "PROJECT_TYPE",
	"IS_TSO_PMA", "GROUP_TYPE", "PRICE_LIST", "TITLE", "DESCRIPTION", "COMMENTS",
	"STATUS", "IMPL_CODE", "S_ITEM_LANGUAGE", "EXTERNAL_CONTRACT_NUMBER",
	"ACCOUNT_TYPE", "COMPETITION", "EXISTING_CONTRACT_NUMBER", "EXISTING_CONTRACT_TYPE",
	"IS_FSL_REQ", "IS_SITE_VISIT_REQ", "LEGAL_FORMAT_TYPE", "CUSTOMER_FOCUS",
	"MOQS_AMORTIZE", "PLATFORM_INFO", "RETURN_PART_LIST_FORMAT", "SOURCE_PRODUCTS",
	"SUMMARY", "TARGET_MARGIN", "TOTAL_PART_COUNT", "CRF_ID",
}

var partColumns = []string{
	"FUTURE_PRICE2", "F_PRICE_EFFECTIVE_DATE2", "FUTURE_PRICE3",
	"F_PRICE_EFFECTIVE_DATE3", "DATE_LOADED", "COMMENTS", "CREATION_DATE", "CREATED_BY",
	"LAST_UPDATE_DATE", "LAST_UPDATED_BY", "AWARD_TAGS", "PREV_PRICE",
	"REPRICE_EFFECTIVE_DATE", "EXTERNAL_CONTRACT_NO", "EXTERNAL_LINE_NO", "PLANT",
	"VALUATION_TYPE", "OPPORTUNITY_NUMBER", "NSN_PART_NUMBER", "CSM_STATUS",
	"TEST_REPORTS_REQUIRED", "INCOTERMS", "INCOTERMS_LOCATION", "CSM_MONITORED",
	"AWARD_ID", "LINE_NO", "INVOICE_PART_NUMBER", "EAU", "UOM", "PRICE",
	"ITEM_CLASSIFICATION", "LEAD_TIME", "STATUS", "AWARD_REP_COMMENTS",
	"CUSTOMER_REFERENCE", "ASL_CODES", "PRIME", "LOADED_CP_NUMBER", "FUTURE_PRICE",
	"F_PRICE_EFFECTIVE_DATE", "EFFECTIVE_DATE", "PART_EXPIRATION_DATE", "MOQ",
	"SAP_NUMBER", "TOT_CON_QTY_REQ", "QUOTE_COST", "QUOTE_COST_SOURCE",
	"PURCHASE_COMMENTS", "SALES_COMMENTS", "CUSTOMER_RESPONSE", "PL4_VENDOR",
	"APPLICABLE_CONTRACT", "CUST_EXCLUDE_PN", "PLANNING_COMMENTS",
}

var failedPartColumns = []string{
	"BUSINESS_RULE_VIOLATION", "CONTRACT_NO", "ERROR_COLUMN", "LINE_NO",
	"LOADING_ERROR", "PART_NUMBER", "PROCESSING_ERROR", "REASON",
	"VALIDATION_ERROR", "HAS_FAILED_PARTS",
}

var contractTerms = map[string]string{
	TermContractNumber:      "AWARD_NUMBER",
	"contract id":           "AWARD_NUMBER",
	"award number":          "AWARD_NUMBER",
	"award id":              "AWARD_NUMBER",
	"contract":              "AWARD_NUMBER",
	TermCustomerNumber:      "CUSTOMER_NUMBER",
	"customer id":           "CUSTOMER_NUMBER",
	"account number":        "CUSTOMER_NUMBER",
	"customer":              "CUSTOMER_NAME",
	"customer name":         "CUSTOMER_NAME",
	"client":                "CUSTOMER_NAME",
	"account name":          "CUSTOMER_NAME",
	"contract name":         "CONTRACT_NAME",
	"contract title":        "CONTRACT_NAME",
	"effective date":        "EFFECTIVE_DATE",
	"start date":            "EFFECTIVE_DATE",
	"expiration date":       "EXPIRATION_DATE",
	"end date":              "EXPIRATION_DATE",
	"price expiration date": "PRICE_EXPIRATION_DATE",
	"creation date":         "CREATE_DATE",
	"created date":          "CREATE_DATE",
	"created by":            "CREATED_BY",
	"status":                "STATUS",
	"state":                 "STATUS",
	"contract type":         "CONTRACT_TYPE",
	"type":                  "CONTRACT_TYPE",
	"payment terms":         "PAYMENT_TERMS",
	"incoterms":             "INCOTERMS",
	"contract length":       "CONTRACT_LENGTH",
	"rebate":                "REBATE",
	"rebates":               "REBATE",
	"line min":              "LINE_MIN",
	"line minimum":          "LINE_MIN",
	"order min":             "ORDER_MIN",
	"order minimum":         "ORDER_MIN",
}

var partTerms = map[string]string{
	TermPartNumber:           "INVOICE_PART_NUMBER",
	"part id":                "INVOICE_PART_NUMBER",
	"invoice part number":    "INVOICE_PART_NUMBER",
	"part":                   "INVOICE_PART_NUMBER",
	TermContractNumber:       "LOADED_CP_NUMBER",
	"price":                  "PRICE",
	"pricing":                "PRICE",
	"cost":                   "PRICE",
	"unit price":             "PRICE",
	"moq":                    "MOQ",
	"min order":              "MOQ",
	"minimum order":          "MOQ",
	"min order qty":          "MOQ",
	"minimum order quantity": "MOQ",
	"uom":                    "UOM",
	"unit of measure":        "UOM",
	"unit measure":           "UOM",
	"lead time":              "LEAD_TIME",
	"leadtime":               "LEAD_TIME",
	"delivery time":          "LEAD_TIME",
	"status":                 "STATUS",
	"item classification":    "ITEM_CLASSIFICATION",
	"eau":                    "EAU",
	"created by":             "CREATED_BY",
	"creation date":          "CREATION_DATE",
	"effective date":         "EFFECTIVE_DATE",
	"expiration date":        "PART_EXPIRATION_DATE",
	"end date":               "PART_EXPIRATION_DATE",
}

var failedPartTerms = map[string]string{
	TermContractNumber: "CONTRACT_NO",
	TermPartNumber:     "PART_NUMBER",
	"part":             "PART_NUMBER",
	"error column":     "ERROR_COLUMN",
	"reason":           "REASON",
	"failed parts":     "HAS_FAILED_PARTS",
	"line number":      "LINE_NO",
}

// DefaultSchema returns the built-in registry seed.
func DefaultSchema() Schema {
	return Schema{
		Version:     "1.0.0",
		LastUpdated: "2025-01-01T00:00:00Z",
		Tables: []TableSpec{
			{Name: TableContracts, PrimaryKey: "AWARD_NUMBER", Columns: contractColumns, BusinessTerms: contractTerms},
			{Name: TableParts, PrimaryKey: "LOADED_CP_NUMBER", Columns: partColumns, BusinessTerms: partTerms},
			{Name: TableFailedParts, PrimaryKey: "CONTRACT_NO", Columns: failedPartColumns, BusinessTerms: failedPartTerms},
		},
	}
}

var defaultCorrections = map[string]string{
	"ctrct":      "contract",
	"contarct":   "contract",
	"contrat":    "contract",
	"conract":    "contract",
	"cntrct":     "contract",
	"kontract":   "contract",
	"creat":      "create",
	"mak":        "make",
	"maek":       "make",
	"genrate":    "generate",
	"informaton": "information",
	"staus":      "status",
	"detials":    "details",
	"pric":       "price",
	"prise":      "price",
	"leed":       "lead",
	"invoce":     "invoice",
	"invoic":     "invoice",
	"efective":   "effective",
	"expir":      "expire",
	"expiry":     "expiration",
	"experation": "expiration",
	"custommer":  "customer",
	"paymet":     "payment",
	"lenght":     "length",
	"typ":        "type",
	"faild":      "failed",
	"pls":        "please",
	"plz":        "please",
	"thx":        "thanks",
	"u":          "you",
	"ur":         "your",
	"no":         "number",
}
