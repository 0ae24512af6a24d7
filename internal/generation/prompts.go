package generation

import (
	"fmt"
	"strings"

	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
)

// systemPrompt frames the generator model as a domain naming expert and
// pins the free-text output contract used when tool calling fails.
const systemPrompt = `You are a domain name expert helping find the perfect domain for a client's business or project.

Your role is to generate creative, memorable, and available domain name candidates.

Key principles:
1. **Availability awareness**: Many obvious names are taken. Get creative with prefixes, suffixes, word combinations, and alternative TLDs.
2. **Brand fit**: Names should match the client's stated vibe (professional, creative, minimal, bold, personal).
3. **Practical**: Names should be easy to spell, pronounce, and remember. Avoid hyphens and numbers.
4. **Diverse**: Suggest a mix of direct names, creative variations, and unexpected options.
5. **TLD strategy**: .com is king but .co, .io, .dev, .app, .me are strong alternatives.

When given previous results, learn from them:
- Avoid repeating domains already checked
- If a pattern is taken (e.g., [name].com), try variations ([name]hq.com, get[name].com)
- If short names are taken, try slightly longer descriptive names
- Note which TLDs had availability and lean into those

Output format: JSON with a "domains" array containing domain name strings.
Example: {"domains": ["example.com", "getexample.io", "examplehq.co"]}
`

const firstRoundContext = `
This is the first round. Start with the most obvious/desirable options first,
then include creative alternatives. Mix direct names with variations.
`

// roundGuidelines shift the generation strategy as the search exhausts
// the obvious namespace. Rounds past the table reuse the final entry.
var roundGuidelines = map[int]string{
	1: `- Start with the most obvious and desirable names
- Include the exact business name with top TLDs (.com, .co, .io)
- Add common prefix/suffix variations (get, try, my, hq, app, studio)
- Mix short catchy names with descriptive alternatives`,

	2: `- Build on round 1 learnings - avoid patterns that were all taken
- Try more creative combinations and wordplay
- Explore TLDs that showed availability in round 1
- Consider industry-specific terms and metaphors`,

	3: `- Get more creative - simple names are likely exhausted
- Try compound words, phrases, and action-oriented names
- Look for synonyms and related concepts
- Explore niche TLDs if mainstream ones are saturated`,

	4: `- Think outside the box - obvious paths are exhausted
- Consider abbreviated names, acronyms, made-up words
- Try unexpected but relevant word combinations
- Focus on TLDs with proven availability`,

	5: `- Last creative push before potential follow-up
- Combine learnings from all previous rounds
- Try any remaining untested patterns
- Include some "long shot" premium-sounding options`,

	6: `- Final round - make it count
- Focus on quality over quantity
- Include your best remaining ideas
- Consider names that might need client input to validate`,
}

const maxGuidelineRound = 6

func guidelinesFor(round int) string {
	if g, ok := roundGuidelines[round]; ok {
		return g
	}
	return roundGuidelines[maxGuidelineRound]
}

// buildPrompt assembles the per-round generation prompt from the
// intake and the accumulated history.
func buildPrompt(intake *domain.Intake, history *RoundHistory, round, count, maxRounds int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate %d domain name candidates for this client.\n\n", count)
	b.WriteString("## Client Information\n\n")
	fmt.Fprintf(&b, "**Business/Project Name**: %s\n", intake.BusinessName)
	if intake.DomainIdea != "" {
		fmt.Fprintf(&b, "**Domain Idea (client's preference)**: %s\n", intake.DomainIdea)
	}
	fmt.Fprintf(&b, "**Preferred TLDs**: %s\n", formatTLDs(intake.TLDPreferences))
	fmt.Fprintf(&b, "**Brand Vibe**: %s\n", intake.Vibe)
	if intake.Keywords != "" {
		fmt.Fprintf(&b, "**Keywords/Themes**: %s\n", intake.Keywords)
	}

	b.WriteString("\n## Current Round\n\n")
	fmt.Fprintf(&b, "This is round %d of %d.\n", round, maxRounds)

	if round > 1 && history != nil && history.CheckedCount() > 0 {
		b.WriteString("\n## Previous Results\n\n")
		fmt.Fprintf(&b, "**Domains already checked**: %d\n", history.CheckedCount())
		fmt.Fprintf(&b, "**Available so far**: %d\n", history.AvailableCount())
		fmt.Fprintf(&b, "**Target**: %d good domains\n\n", history.Target)
		fmt.Fprintf(&b, "### What's been tried:\n%s\n\n", history.TriedSummary())
		fmt.Fprintf(&b, "### What worked (available):\n%s\n\n", history.AvailableSummary())
		fmt.Fprintf(&b, "### Patterns to avoid (all taken):\n%s\n", history.TakenPatterns())
	} else {
		b.WriteString(firstRoundContext)
	}

	b.WriteString("\n## Instructions\n\n")
	fmt.Fprintf(&b, "Generate exactly %d unique domain suggestions as a JSON object.\n\n", count)
	fmt.Fprintf(&b, "Guidelines for this round:\n%s\n\n", guidelinesFor(round))
	b.WriteString("Output only valid JSON in this format:\n")
	b.WriteString(`{"domains": ["domain1.tld", "domain2.tld", ...]}` + "\n")

	return b.String()
}

func formatTLDs(prefs []string) string {
	for _, p := range prefs {
		if p == "any" {
			return "Open to any TLD (but prefers .com if available)"
		}
	}
	dotted := make([]string, len(prefs))
	for i, p := range prefs {
		dotted[i] = "." + p
	}
	return strings.Join(dotted, ", ")
}
