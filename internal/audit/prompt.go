package audit

import "fmt"

const systemPrompt = `You are a meticulous regulatory compliance auditor.
Given regulation text and a case scenario, decide whether the scenario is
compliant with the regulations. Return ONLY a JSON object with exactly:
  "status": one of "compliant", "violation", "uncertain"
  "narrative": a detailed explanation of the verdict, citing the relevant
  clauses of the supplied regulations by their source file markers where
  possible. Use "uncertain" when the regulations do not cover the scenario
  or the facts given are insufficient. No markdown code fences.`

func buildUserPrompt(regulation, scenario string) string {
	return fmt.Sprintf("REGULATIONS:\n%s\n\nSCENARIO:\n%s\n\nReturn ONLY the JSON verdict.",
		regulation, scenario)
}
