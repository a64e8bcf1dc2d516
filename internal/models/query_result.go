// internal/models/query_result.go
package models

import "encoding/json"

// Header holds the singular identifiers of a query. Empty means absent.
type Header struct {
	ContractNumber string
	PartNumber     string
	CustomerNumber string
	CustomerName   string
	CreatedBy      string
}

// HeaderField selects one Header slot.
type HeaderField int

const (
	FieldContractNumber HeaderField = iota
	FieldPartNumber
	FieldCustomerNumber
	FieldCustomerName
	FieldCreatedBy
)

func (h *Header) slot(f HeaderField) *string {
	switch f {
	case FieldContractNumber:
		return &h.ContractNumber
	case FieldPartNumber:
		return &h.PartNumber
	case FieldCustomerNumber:
		return &h.CustomerNumber
	case FieldCustomerName:
		return &h.CustomerName
	case FieldCreatedBy:
		return &h.CreatedBy
	}
	return nil
}

// Fill sets the field only when it is still absent. It reports whether the
// value was stored.
func (h *Header) Fill(f HeaderField, value string) bool {
	dst := h.slot(f)
	if dst == nil || *dst != "" || value == "" {
		return false
	}
	*dst = value
	return true
}

// Get returns the value of a field, empty when absent.
func (h Header) Get(f HeaderField) string {
	if p := h.slot(f); p != nil {
		return *p
	}
	return ""
}

// HasIdentifier reports whether any contract, part or customer identifier is set.
func (h Header) HasIdentifier() bool {
	return h.ContractNumber != "" || h.PartNumber != "" || h.CustomerNumber != "" || h.CustomerName != ""
}

// EntityFilter is one attribute/operation/value constraint.
type EntityFilter struct {
	Attribute string    `json:"attribute"`
	Operation Operation `json:"operation"`
	Value     string    `json:"value"`
	Source    Source    `json:"source"`
}

// NewFilter builds an extracted filter.
func NewFilter(attribute string, op Operation, value string) EntityFilter {
	return EntityFilter{Attribute: attribute, Operation: op, Value: value, Source: SourceExtracted}
}

// ValidationError is a diagnostic attached to a result.
type ValidationError struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// InputTracking records the raw and spell-corrected text.
type InputTracking struct {
	OriginalInput  string  `json:"originalInput"`
	CorrectedInput *string `json:"correctedInput"`
	Confidence     float64 `json:"correctionConfidence"`
}

// QueryMetadata carries the classification and timing of a query.
type QueryMetadata struct {
	QueryType        QueryType  `json:"queryType"`
	ActionType       ActionType `json:"actionType"`
	ProcessingTimeMs int64      `json:"processingTimeMs"`
}

// QueryResult is the assembled output of the query understanding pipeline.
// Callers treat it as read-only once returned.
type QueryResult struct {
	InputTracking InputTracking
	Header        Header
	Metadata      QueryMetadata
	Entities      []EntityFilter
	DisplayFields []string
	Errors        []ValidationError
}

// HasBlockers reports whether any error makes the result unusable.
func (r *QueryResult) HasBlockers() bool {
	for _, e := range r.Errors {
		if e.Severity == SeverityBlocker {
			return true
		}
	}
	return false
}

// Filter returns the first filter on the attribute.
func (r *QueryResult) Filter(attribute string) (EntityFilter, bool) {
	for _, f := range r.Entities {
		if f.Attribute == attribute {
			return f, true
		}
	}
	return EntityFilter{}, false
}

type wireHeader struct {
	ContractNumber *string       `json:"contractNumber"`
	PartNumber     *string       `json:"partNumber"`
	CustomerNumber *string       `json:"customerNumber"`
	CustomerName   *string       `json:"customerName"`
	CreatedBy      *string       `json:"createdBy"`
	InputTracking  InputTracking `json:"inputTracking"`
}

type wireResult struct {
	Header          wireHeader        `json:"header"`
	QueryMetadata   QueryMetadata     `json:"queryMetadata"`
	Entities        []EntityFilter    `json:"entities"`
	DisplayEntities []string          `json:"displayEntities"`
	Errors          []ValidationError `json:"errors"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (r QueryResult) MarshalJSON() ([]byte, error) {
	w := wireResult{
		Header: wireHeader{
			ContractNumber: optional(r.Header.ContractNumber),
			PartNumber:     optional(r.Header.PartNumber),
			CustomerNumber: optional(r.Header.CustomerNumber),
			CustomerName:   optional(r.Header.CustomerName),
			CreatedBy:      optional(r.Header.CreatedBy),
			InputTracking:  r.InputTracking,
		},
		QueryMetadata:   r.Metadata,
		Entities:        r.Entities,
		DisplayEntities: r.DisplayFields,
		Errors:          r.Errors,
	}
	if w.Entities == nil {
		w.Entities = []EntityFilter{}
	}
	if w.DisplayEntities == nil {
		w.DisplayEntities = []string{}
	}
	if w.Errors == nil {
		w.Errors = []ValidationError{}
	}
	return json.Marshal(w)
}

func (r *QueryResult) UnmarshalJSON(data []byte) error {
	var w wireResult
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = QueryResult{
		InputTracking: w.Header.InputTracking,
		Header: Header{
			ContractNumber: deref(w.Header.ContractNumber),
			PartNumber:     deref(w.Header.PartNumber),
			CustomerNumber: deref(w.Header.CustomerNumber),
			CustomerName:   deref(w.Header.CustomerName),
			CreatedBy:      deref(w.Header.CreatedBy),
		},
		Metadata:      w.QueryMetadata,
		Entities:      w.Entities,
		DisplayFields: w.DisplayEntities,
		Errors:        w.Errors,
	}
	if r.Entities == nil {
		r.Entities = []EntityFilter{}
	}
	if r.DisplayFields == nil {
		r.DisplayFields = []string{}
	}
	if r.Errors == nil {
		r.Errors = []ValidationError{}
	}
	return nil
}
