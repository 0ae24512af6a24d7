package llm

// ToolDefinition describes a function the model may call, with a JSON
// Schema constraining the argument shape.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToAnthropic renders the tool in Anthropic's messages-API format.
func (t ToolDefinition) ToAnthropic() map[string]any {
	return map[string]any{
		"name":         t.Name,
		"description":  t.Description,
		"input_schema": t.Parameters,
	}
}

// ToOpenAI renders the tool in OpenAI's chat-completions format, which
// Kimi and DeepSeek also accept.
func (t ToolDefinition) ToOpenAI() map[string]any {
	return map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        t.Name,
			"description": t.Description,
			"parameters":  t.Parameters,
		},
	}
}

// CandidateTool is the structured-output schema for candidate generation.
var CandidateTool = ToolDefinition{
	Name:        "generate_domain_candidates",
	Description: "Generate domain name candidates for a business. Call this tool with your list of suggested domains.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"domains": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "List of domain candidates (e.g., ['example.com', 'mysite.io']). Each must be a valid domain with TLD.",
			},
		},
		"required": []string{"domains"},
	},
}

// EvaluationTool is the structured-output schema for candidate scoring.
var EvaluationTool = ToolDefinition{
	Name:        "evaluate_domains",
	Description: "Evaluate domain candidates for quality, memorability, and brand fit. Call this tool with your evaluations.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"evaluations": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"domain":         map[string]any{"type": "string", "description": "The domain being evaluated"},
						"score":          map[string]any{"type": "number", "minimum": 0, "maximum": 1, "description": "Overall quality score from 0 to 1"},
						"worth_checking": map[string]any{"type": "boolean", "description": "Whether this domain is worth checking availability"},
						"pronounceable":  map[string]any{"type": "boolean", "description": "Easy to pronounce aloud"},
						"memorable":      map[string]any{"type": "boolean", "description": "Easy to remember"},
						"brand_fit":      map[string]any{"type": "boolean", "description": "Fits the brand vibe"},
						"email_friendly": map[string]any{"type": "boolean", "description": "Works well as an email address"},
						"flags":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "List of concerns (e.g., 'contains hyphen', 'hard to spell')"},
						"notes":          map[string]any{"type": "string", "description": "Brief explanation of the evaluation"},
					},
					"required": []string{"domain", "score", "worth_checking"},
				},
				"description": "Array of domain evaluations",
			},
		},
		"required": []string{"evaluations"},
	},
}
