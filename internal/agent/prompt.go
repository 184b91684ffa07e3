package agent

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/pandacode-cli/internal/analysis"
	"github.com/KaramelBytes/pandacode-cli/internal/frame"
	"github.com/KaramelBytes/pandacode-cli/internal/packager"
	"github.com/KaramelBytes/pandacode-cli/internal/sandbox"
	"github.com/KaramelBytes/pandacode-cli/internal/utils"
)

// standardPandasFraming is put in front of the query when plain pandas is preferred.
const standardPandasFraming = "Generate standard Pandas code (not PandasAI specific code). " +
	"Make sure to include all necessary imports. Focus on basic pandas operations. " +
	"Show the complete code solution and make sure it's executable. "

const systemPrompt = `You are a data analyst who answers questions by writing Python code with pandas.
A pandas DataFrame named df is already loaded with the dataset described below (dfs[0] is the same frame).
Do not read files from disk and do not redefine df.

Return exactly one fenced python code block. The last line of the block must declare the answer on a single line:
result = {"type": <"string" | "number" | "dataframe" | "plot">, "value": <answer>}
When the question asks for a chart, draw it with matplotlib, save it with plt.savefig('%s')
and use {"type": "plot", "value": "%s"}.`

// framedQuery applies the preference-specific framing to the user's question.
func framedQuery(query string, pref packager.Preference) string {
	if pref == packager.PreferenceStandardPandas {
		return standardPandasFraming + "Query: " + query
	}
	return query
}

// buildMessages assembles the system and user messages for one request.
// The dataset block is capped at maxContextTokens.
func buildMessages(f *frame.Frame, query string, pref packager.Preference, opt analysis.Options, maxContextTokens int) (string, string) {
	sys := fmt.Sprintf(systemPrompt, sandbox.ChartFile, sandbox.ChartFile)

	var b strings.Builder
	b.WriteString(analysis.Profile(f, opt).Markdown())
	b.WriteString("\n[FIRST ROWS AS CSV]\n")
	b.WriteString(f.Head(5).CSVString())
	dataset := b.String()
	if maxContextTokens > 0 {
		dataset = utils.TruncateToTokenLimit(dataset, maxContextTokens)
	}

	user := dataset + "\n[QUESTION]\n" + framedQuery(query, pref)
	return sys, user
}
