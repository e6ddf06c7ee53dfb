package extract

import "testing"

func candidateRecord(number any, hasQuestionDiagram, hasAnswerDiagrams bool) map[string]any {
	return map[string]any{
		"question_number":      number,
		"has_question_diagram": hasQuestionDiagram,
		"has_answer_diagrams":  hasAnswerDiagrams,
		"answer_options": map[string]any{
			"A": "option a",
			"B": "option b",
		},
		"answer_diagram_paths": map[string]any{},
	}
}

func TestLinkDiagrams(t *testing.T) {
	t.Run("links question and answer diagrams", func(t *testing.T) {
		records := []map[string]any{
			candidateRecord(float64(3), true, false),
			candidateRecord(float64(4), false, true),
		}
		assets := []string{"/tmp/assets/question_3.png", "/tmp/assets/answer_B.png"}

		LinkDiagrams(records, assets)

		if got := records[0]["question_diagram_path"]; got != "/tmp/assets/question_3.png" {
			t.Errorf("question diagram not linked, got %v", got)
		}
		paths, _ := records[1]["answer_diagram_paths"].(map[string]any)
		if paths["B"] != "/tmp/assets/answer_B.png" {
			t.Errorf("answer B diagram not linked, got %v", paths)
		}
		if _, ok := paths["A"]; ok {
			t.Error("option A should not receive a path")
		}
	})

	t.Run("no assets is a no-op", func(t *testing.T) {
		records := []map[string]any{candidateRecord(float64(1), true, false)}
		LinkDiagrams(records, nil)
		if _, ok := records[0]["question_diagram_path"].(string); ok {
			t.Error("no path should be assigned without assets")
		}
	})

	t.Run("unlinked flags remain unlinked", func(t *testing.T) {
		records := []map[string]any{candidateRecord(float64(9), true, false)}
		LinkDiagrams(records, []string{"/tmp/assets/unrelated.png"})
		if _, ok := records[0]["question_diagram_path"].(string); ok {
			t.Error("non-matching asset should not be assigned")
		}
	})

	t.Run("flag false is never linked", func(t *testing.T) {
		records := []map[string]any{candidateRecord(float64(3), false, false)}
		LinkDiagrams(records, []string{"/tmp/assets/question_3.png"})
		if _, ok := records[0]["question_diagram_path"].(string); ok {
			t.Error("record without diagram flag should not be linked")
		}
	})

	t.Run("existing path is kept", func(t *testing.T) {
		rec := candidateRecord(float64(3), true, false)
		rec["question_diagram_path"] = "/already/linked.png"
		LinkDiagrams([]map[string]any{rec}, []string{"/tmp/assets/question_3.png"})
		if rec["question_diagram_path"] != "/already/linked.png" {
			t.Errorf("existing path overwritten: %v", rec["question_diagram_path"])
		}
	})

	t.Run("number matches whole digit runs only", func(t *testing.T) {
		records := []map[string]any{candidateRecord(float64(1), true, false)}
		LinkDiagrams(records, []string{"/tmp/assets/page_13.png"})
		if _, ok := records[0]["question_diagram_path"].(string); ok {
			t.Error("question 1 should not match page_13.png")
		}

		LinkDiagrams(records, []string{"/tmp/assets/image_1.png"})
		if records[0]["question_diagram_path"] != "/tmp/assets/image_1.png" {
			t.Errorf("question 1 should match image_1.png, got %v", records[0]["question_diagram_path"])
		}
	})

	t.Run("missing number falls back to record position", func(t *testing.T) {
		records := []map[string]any{candidateRecord(nil, true, false)}
		LinkDiagrams(records, []string{"/tmp/assets/question_1.png"})
		if records[0]["question_diagram_path"] != "/tmp/assets/question_1.png" {
			t.Errorf("expected positional fallback link, got %v", records[0]["question_diagram_path"])
		}
	})

	t.Run("tie-break is lexicographic by filename", func(t *testing.T) {
		records := []map[string]any{candidateRecord(float64(2), true, false)}
		// Both match question 2; the lexicographically smaller basename wins
		// regardless of input order.
		LinkDiagrams(records, []string{"/tmp/z/question_2_v2.png", "/tmp/a/question_2_v1.png"})
		if records[0]["question_diagram_path"] != "/tmp/a/question_2_v1.png" {
			t.Errorf("expected lexicographic winner, got %v", records[0]["question_diagram_path"])
		}
	})

	t.Run("case-insensitive answer token", func(t *testing.T) {
		records := []map[string]any{candidateRecord(float64(5), false, true)}
		LinkDiagrams(records, []string{"/tmp/assets/ANSWER_b.PNG"})
		paths, _ := records[0]["answer_diagram_paths"].(map[string]any)
		if paths["B"] != "/tmp/assets/ANSWER_b.PNG" {
			t.Errorf("case-insensitive match failed: %v", paths)
		}
	})
}
