package vision

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BuildPrompt renders the instruction sent alongside the image. It names the
// exact reply schema, enumerates the content categories the model must
// recognize, and embeds the caller's variable bindings as JSON context.
func BuildPrompt(vars map[string]string) string {
	if vars == nil {
		vars = map[string]string{}
	}
	varsJSON, _ := json.Marshal(vars)

	var b strings.Builder
	b.WriteString("Analyze the mathematical content in the image and return a JSON string containing a list of dictionaries. ")
	b.WriteString("Each dictionary has the keys 'expr', 'result', and optionally 'assign'. ")
	b.WriteString("Supported cases: ")
	b.WriteString("1. Simple expressions (e.g., '2 + 2'): Return [{'expr': '2 + 2', 'result': 4}]. ")
	b.WriteString("2. Equations (e.g., 'x^2 + 2x + 1 = 0'): Solve for the variable and return one entry per root: [{'expr': 'x', 'result': -1, 'assign': true}]. ")
	b.WriteString("3. Variable assignments (e.g., 'x = 4'): Return [{'expr': 'x', 'result': 4, 'assign': true}]. ")
	b.WriteString("4. Systems of simultaneous equations: earlier assignments influence later ones, apply substitution and return one entry per variable. ")
	b.WriteString("5. Graphical problems (e.g., Pythagorean theorem): Compute from the drawn properties, not a transcribed equation: [{'expr': 'a^2 + b^2 = c^2', 'result': 5}]. ")
	b.WriteString("6. Abstract concepts (e.g., a heart): Return a textual interpretation: [{'expr': 'A heart symbol', 'result': 'love'}]. ")
	b.WriteString("Use PEMDAS for calculations. ")
	fmt.Fprintf(&b, "If variables are used, refer to this dictionary: %s. ", varsJSON)
	b.WriteString("Escape special characters (e.g., '\\n' as '\\\\n'). ")
	b.WriteString("Return only the JSON string, without markdown, backticks, or additional text.")
	return b.String()
}
