// internal/nlp/classifier/classifier.go
//
// Package classifier decides the coarse intent of a query. The rules run in a
// fixed order and the first one that matches wins.
package classifier

import (
	"contract-query-workers/internal/models"
	"contract-query-workers/internal/nlp/extractor"
	"contract-query-workers/internal/nlp/lexicon"
)

// Rule names reported in Classification.Rule.
const (
	RuleFailedParts       = "failed_parts"
	RuleMandatoryContract = "mandatory_contract"
	RuleHelpOrCreate      = "help_or_create"
	RulePriceExpiration   = "price_expiration"
	RulePartsDominate     = "parts_dominate"
	RuleContractEvidence  = "contract_evidence"
	RuleDefault           = "default"
)

// Classification is the classifier verdict.
type Classification struct {
	QueryType models.QueryType

	// Subject is the table family the user was asking about. It differs from
	// QueryType only for HELP results.
	Subject models.QueryType

	// NeedsContract is set when a parts question arrived without a contract
	// number.
	NeedsContract bool

	// FailedParts is set when the query asks about failed parts.
	FailedParts bool

	Rule string
}

// Classify runs the decision rules over the normalized text and what the
// extractor found.
func Classify(text string, ex *extractor.Extraction) Classification {
	lex := lexicon.Analyze(text)
	header := ex.Header
	hasContract := header.ContractNumber != ""

	var cls Classification
	if lexicon.MentionsFailedParts(lex) {
		cls = Classification{QueryType: models.QueryTypeParts, Subject: models.QueryTypeParts, FailedParts: true, Rule: RuleFailedParts}
	}

	if !hasContract && aboutParts(lex) {
		return Classification{
			QueryType:     models.QueryTypeHelp,
			Subject:       models.QueryTypeParts,
			NeedsContract: true,
			FailedParts:   cls.FailedParts,
			Rule:          RuleMandatoryContract,
		}
	}
	if cls.FailedParts {
		return cls
	}

	if lex.HasAny(lexicon.CreateWords...) || lex.HasAny(lexicon.HelpWords...) {
		subject := models.QueryTypeContracts
		if lex.HasAny(lexicon.PartsWords...) && !lex.HasAny(lexicon.ContractWords...) {
			subject = models.QueryTypeParts
		}
		return Classification{QueryType: models.QueryTypeHelp, Subject: subject, Rule: RuleHelpOrCreate}
	}

	if hasContract && lexicon.MentionsPriceExpiration(lex) {
		return contracts(RulePriceExpiration)
	}

	if partsScore(lex, header) > contractScore(lex, header) {
		return Classification{QueryType: models.QueryTypeParts, Subject: models.QueryTypeParts, Rule: RulePartsDominate}
	}

	if hasContract || lex.HasAny(lexicon.ContractWords...) {
		return contracts(RuleContractEvidence)
	}
	return contracts(RuleDefault)
}

func contracts(rule string) Classification {
	return Classification{QueryType: models.QueryTypeContracts, Subject: models.QueryTypeContracts, Rule: rule}
}

// aboutParts reports whether the query is a parts question. Part attributes
// such as price only count when no contract keyword or price expiration
// puts them in a contract context.
func aboutParts(lex *lexicon.Text) bool {
	if lex.HasAny(lexicon.PartsWords...) || lexicon.MentionsFailedParts(lex) {
		return true
	}
	if !lexicon.MentionsPartAttribute(lex) {
		return false
	}
	return !lex.HasAny(lexicon.ContractWords...) && !lexicon.MentionsPriceExpiration(lex)
}

func partsScore(lex *lexicon.Text, header models.Header) int {
	score := lex.Count(lexicon.PartsWords...) + lex.Count(lexicon.PartAttributeWords...) + lex.Count("leadtime")
	for _, p := range lexicon.PartAttributePhrases {
		score += lex.PhraseCount(p)
	}
	if header.PartNumber != "" {
		score++
	}
	return score
}

// contractScore counts contract and customer words. A contract word that
// only introduces the contract number ("contract 100476") is not evidence
// that the user wants contract data.
func contractScore(lex *lexicon.Text, header models.Header) int {
	score := lex.Count(lexicon.ContractWords...) + lex.Count(lexicon.CustomerWords...)
	if header.ContractNumber == "" {
		return score
	}
	for i, w := range lex.Words {
		if w != header.ContractNumber {
			continue
		}
		j := i - 1
		for j >= 0 && isNumberWord(lex.Words[j]) {
			j--
		}
		if j >= 0 && (lex.Words[j] == "contract" || lex.Words[j] == "contracts") {
			score--
		}
		break
	}
	if score < 0 {
		return 0
	}
	return score
}

func isNumberWord(w string) bool {
	switch w {
	case "number", "no", "num", "id":
		return true
	}
	return false
}
