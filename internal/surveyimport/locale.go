package surveyimport

import (
	"errors"

	"golang.org/x/text/language"
)

var supportedLocales = []language.Tag{
	language.English,
	language.BrazilianPortuguese,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// MatchLocale picks the supported locale closest to an Accept-Language
// header or a bare tag like "pt-BR". English is the fallback.
func MatchLocale(accept string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := localeMatcher.Match(tags...)
	return supportedLocales[idx]
}

var fileErrorMessages = map[string]map[language.Tag]string{
	CodeUnsupportedFormat: {
		language.English:             "Unsupported file format. Use CSV, XLSX or XLS.",
		language.BrazilianPortuguese: "Formato de arquivo não suportado. Use CSV, XLSX ou XLS.",
	},
	CodeEmptyFile: {
		language.English:             "The file has no data rows.",
		language.BrazilianPortuguese: "O arquivo não contém linhas de dados.",
	},
}

var missingColumnMessages = map[Field]map[language.Tag]string{
	FieldOutcome: {
		language.English:             `Column "outcome" not found`,
		language.BrazilianPortuguese: `Coluna "outcome" não encontrada`,
	},
	FieldImportance: {
		language.English:             "Importance column not found (accepts: importancia, importance)",
		language.BrazilianPortuguese: "Coluna de importância não encontrada (aceita: importancia, importance)",
	},
	FieldSatisfaction: {
		language.English:             "Satisfaction column not found (accepts: satisfacao, satisfaction)",
		language.BrazilianPortuguese: "Coluna de satisfação não encontrada (aceita: satisfacao, satisfaction)",
	},
	FieldOpportunityScore: {
		language.English:             "Opportunity score column not found (accepts: opportunity_score, opportunityScore)",
		language.BrazilianPortuguese: "Coluna de opportunity score não encontrada (aceita: opportunity_score, opportunityScore)",
	},
}

// Message renders a file-level error for operators in the given locale.
// Other errors fall back to err.Error().
func Message(err error, locale language.Tag) string {
	var mc *MissingColumnError
	if errors.As(err, &mc) {
		if msg, ok := missingColumnMessages[mc.Field][locale]; ok {
			return msg
		}
		return mc.Error()
	}
	if msg, ok := fileErrorMessages[ErrorCode(err)][locale]; ok {
		return msg
	}
	return err.Error()
}
