// Package synthesis provides quiz item and topic breakdown adapters.
//
// LLMQuizSynthesizer and LLMTopicBreakdown prompt a driven.LLMService.
// ExtractiveSynthesizer needs no model: it turns sentences from the grounding
// chunks into fill-in-the-blank questions, so quizzes work fully offline.
package synthesis
