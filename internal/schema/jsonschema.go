package schema

// JSON Schema for the raw extraction reply. The validator compiles this to
// gate untyped model output before any typed construction happens, and the
// same document is offered to providers as a structured-output format. Enum
// constraints are generated from the tables in enums.go so the prompt, the
// schema, and record validation can never disagree.

func stringOrNull() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

func enumOrNull(values []string) map[string]any {
	members := make([]any, 0, len(values)+1)
	for _, v := range values {
		members = append(members, v)
	}
	members = append(members, nil)
	return map[string]any{"enum": members}
}

func enumOf(values []string) map[string]any {
	members := make([]any, 0, len(values))
	for _, v := range values {
		members = append(members, v)
	}
	return map[string]any{"enum": members}
}

// TagsSchema describes the nested tags object.
func TagsSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"difficulty":     enumOf(DifficultyValues()),
			"topic":          map[string]any{"type": "string"},
			"subtopic":       stringOrNull(),
			"year_relevance": stringOrNull(),
			"exam_type":      stringOrNull(),
			"importance":     enumOrNull(ImportanceValues()),
			"keywords": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"difficulty", "topic"},
	}
}

// QuestionSchema describes one candidate question record.
func QuestionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_text": map[string]any{"type": "string"},
			"answer_options": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
				"minProperties":        1,
			},
			"has_question_diagram":  map[string]any{"type": "boolean"},
			"question_diagram_path": stringOrNull(),
			"language":              enumOf(LanguageValues()),
			"category":              enumOf(CategoryValues()),
			"tags":                  TagsSchema(),
			"correct_answer":        map[string]any{"type": "string"},
			"has_temporal_relevance": map[string]any{
				"type": "boolean",
			},
			"has_answer_diagrams": map[string]any{"type": "boolean"},
			"answer_diagram_paths": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
			},
			"question_id": stringOrNull(),
			"explanation": stringOrNull(),
			"source":      stringOrNull(),
			"question_number": map[string]any{
				"type": []string{"integer", "string", "null"},
			},
			"marks": map[string]any{
				"type":    []string{"number", "null"},
				"minimum": 0,
			},
			"negative_marking": map[string]any{
				"type": []string{"boolean", "null"},
			},
		},
		"required": []string{
			"question_text",
			"answer_options",
			"has_question_diagram",
			"language",
			"category",
			"tags",
			"correct_answer",
			"has_temporal_relevance",
			"has_answer_diagrams",
		},
	}
}

// MetadataSchema describes the document-level metadata object.
func MetadataSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pdf_filename":    stringOrNull(),
			"extraction_date": stringOrNull(),
			"total_questions": map[string]any{
				"type":    []string{"integer", "null"},
				"minimum": 0,
			},
			"exam_name": stringOrNull(),
			"exam_date": stringOrNull(),
			"exam_year": map[string]any{"type": []string{"integer", "null"}},
			"processing_notes": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	}
}

// ExtractionSchema describes the full reply shape: questions plus metadata.
func ExtractionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":  "array",
				"items": QuestionSchema(),
			},
			"metadata": map[string]any{
				"anyOf": []any{
					map[string]any{"type": "null"},
					MetadataSchema(),
				},
			},
		},
		"required": []string{"questions"},
	}
}

// ResponseFormat wraps the extraction schema in the structured-output
// envelope understood by OpenRouter/OpenAI-compatible backends.
func ResponseFormat() map[string]any {
	return map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   "question_extraction",
			"strict": false,
			"schema": ExtractionSchema(),
		},
	}
}
