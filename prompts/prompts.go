// Package prompts holds the fixed LLM prompt templates. Each template has a
// single substitution point for the context text.
package prompts

import "fmt"

const questionPaperTemplate = `You are an expert exam paper setter for school examinations.

Using the PREVIOUS YEAR QUESTION PAPER TEXT below,
generate a NEW QUESTION PAPER with:

- Same exam pattern
- Same difficulty level
- Same section structure
- New questions (do NOT repeat questions)
- Balanced coverage of topics

Format:
- Section A (MCQs / 1 mark)
- Section B (2 marks)
- Section C (3 marks)
- Section D (5 marks)

PREVIOUS QUESTION PAPER:
------------------------
%s
------------------------

Generate the NEW QUESTION PAPER now:`

const flashcardTemplate = `You are an expert teacher.
Generate up to %d concise question-answer flashcards from the following exam content.
For each flashcard, provide:
- question
- answer
- difficulty (choose one of: easy, medium, hard)

Format the output strictly as a JSON array, example:
[
    {"question": "...", "answer": "...", "difficulty": "easy"},
    ...
]
Only output valid JSON.

Text:
%s`

// QuestionPaper builds the paper generation prompt for the given context text.
func QuestionPaper(context string) string {
	return fmt.Sprintf(questionPaperTemplate, context)
}

// Flashcards builds the flashcard generation prompt for the given context text.
func Flashcards(maxCards int, context string) string {
	return fmt.Sprintf(flashcardTemplate, maxCards, context)
}
