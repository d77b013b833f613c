package brief

import (
	"fmt"
	"strings"
)

const missingField = "......."

func field(info map[string]string, key string) string {
	if v, ok := info[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return missingField
}

// FormatBrief renders the extracted case fields into the ruling document
// layout used for sentencing briefs.
func FormatBrief(info map[string]string) string {
	doc := fmt.Sprintf(`%s

IN THE %s OF %s

AT %s

%s CRIMINAL CASE NO. %s

%s, J.

REPUBLIC.........................................PROSECUTION

VERSUS

%s..................ACCUSED

RULING ON SENTENCING

This court is presiding over the case of %s, Criminal Case No. %s. The prosecution is represented by %s, and the defense counsel is %s. The accused, %s, has been charged with %s. The accused entered a plea of %s, and after careful consideration of the evidence presented, this court has reached a verdict of %s

%s

After thorough examination of the case, the court has identified the following mitigating factors:
%s

The court has also taken into account the following aggravating factors:
%s

In reaching this decision, the court considered the following legal principles:
%s

The court also took into account the following precedents:
%s

Taking all factors into consideration, this court hereby sentences the accused as follows:
%s

DATED, SIGNED AND DELIVERED AT %s THIS %s.

%s J
JUDGE`,
		field(info, "case_title"),
		field(info, "court_type"), field(info, "country"),
		field(info, "court_location"),
		field(info, "court_type"), field(info, "case_number"),
		field(info, "judge_name"),
		field(info, "accused_name"),
		field(info, "case_title"), field(info, "case_number"),
		field(info, "prosecutor_name"), field(info, "defense_counsel_name"),
		field(info, "accused_name"), field(info, "charges"),
		field(info, "plea"), field(info, "verdict"),
		field(info, "filtered_transcript"),
		field(info, "mitigating_factors"),
		field(info, "aggravating_factors"),
		field(info, "legal_principles"),
		field(info, "precedents_cited"),
		field(info, "sentence"),
		field(info, "court_location"), field(info, "date"),
		field(info, "judge_name"),
	)
	return strings.TrimSpace(doc)
}
