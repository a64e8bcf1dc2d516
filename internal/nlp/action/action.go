// internal/nlp/action/action.go
package action

import (
	"errors"
	"fmt"
	"regexp"

	"contract-query-workers/internal/models"
	"contract-query-workers/internal/nlp/classifier"
	"contract-query-workers/internal/nlp/lexicon"
)

var ErrUnknownQueryType = errors.New("UNKNOWN_QUERY_TYPE")

// namedContractRe matches a creation request that already names the contract.
var namedContractRe = regexp.MustCompile(`(?i)\b(?:named|called|titled)\s+["']?[A-Za-z0-9]`)

// Resolve maps a classification and the extracted evidence to exactly one
// ActionType.
func Resolve(cls classifier.Classification, header models.Header, filters []models.EntityFilter, text string) (models.ActionType, error) {
	lex := lexicon.Analyze(text)

	switch cls.QueryType {
	case models.QueryTypeHelp:
		return resolveHelp(lex, text), nil

	case models.QueryTypeContracts:
		switch {
		case header.ContractNumber != "" && lex.HasAny(lexicon.UpdateWords...):
			return models.ActionUpdateContract, nil
		case header.ContractNumber != "":
			return models.ActionContractsByContractNumber, nil
		default:
			return models.ActionContractsByFilter, nil
		}

	case models.QueryTypeParts:
		switch {
		case header.PartNumber != "":
			return models.ActionPartsByPartNumber, nil
		case hasFailedPartsFilter(filters) || cls.FailedParts:
			return models.ActionPartsFailedByContractNumber, nil
		case header.ContractNumber != "":
			return models.ActionPartsByContractNumber, nil
		default:
			return models.ActionPartsByFilter, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownQueryType, cls.QueryType)
}

// resolveHelp ties go to help_user.
func resolveHelp(lex *lexicon.Text, text string) models.ActionType {
	help := lex.Count(lexicon.HelpWords...)
	bot := lex.Count(lexicon.CreateWords...) + lex.Count("please") + lex.PhraseCount("for me")
	if help >= bot {
		return models.ActionHelpUser
	}
	if namedContractRe.MatchString(text) {
		return models.ActionCreateContract
	}
	return models.ActionHelpBot
}

func hasFailedPartsFilter(filters []models.EntityFilter) bool {
	for _, f := range filters {
		if f.Attribute == models.AttrHasFailedParts && f.Value == "true" {
			return true
		}
	}
	return false
}
