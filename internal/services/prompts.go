package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/soaringjerry/stylus/internal/models"
)

var ratingScales = map[string][5]string{
	"sentenceLength": {"very short, punchy sentences", "short sentences", "a mix of short and medium sentences", "longer, developed sentences", "long, flowing sentences"},
	"vocabulary":     {"plain everyday words", "simple vocabulary", "balanced vocabulary", "rich vocabulary", "sophisticated or technical vocabulary"},
	"formality":      {"very casual", "casual", "neutral", "professional", "very formal"},
	"examples":       {"almost no examples", "few examples", "examples where helpful", "frequent examples", "examples for nearly every point"},
}

func previewPrompt() string {
	return "You are a writing assistant. Rewrite the user's content so it follows the style guide exactly. " +
		"Keep the meaning and facts intact. Return ONLY a JSON object with fields: " +
		"preview (string, the rewritten content), appliedRules (array of short strings naming the style rules you applied)."
}

func styleAnalysisPrompt() string {
	return "You are a writing style analyst. Study the user's writing samples and describe their voice. " +
		"Return ONLY a JSON object with fields: tone (string), " +
		"style (object with integer fields sentenceLength, vocabulary, formality, examples, each 1-5), " +
		"audiences (array of strings), contentTypes (array of strings), personality (array of strings), " +
		"preferences (object with booleans useBulletPoints, useHeaders, useCTA), summary (string)."
}

func previewUserMessage(req PreviewRequest) (string, error) {
	src := map[string]any{
		"content":    req.Content,
		"styleGuide": describeStyle(req.SurveyData),
		"surveyData": req.SurveyData,
	}
	b, err := json.Marshal(src)
	if err != nil {
		return "", fmt.Errorf("encode preview prompt: %w", err)
	}
	return string(b), nil
}

func styleAnalysisUserMessage(req StyleAnalysisRequest) (string, error) {
	b, err := json.Marshal(map[string]any{"samples": req.Samples})
	if err != nil {
		return "", fmt.Errorf("encode style analysis prompt: %w", err)
	}
	return string(b), nil
}

// describeStyle renders survey answers as plain-language rules for the model.
func describeStyle(sd models.SurveyData) string {
	var rules []string
	if sd.Tone != "" {
		rules = append(rules, "Tone: "+sd.Tone+".")
	}
	rules = append(rules,
		"Sentence length: "+ratingLabel("sentenceLength", sd.Style.SentenceLength)+".",
		"Vocabulary: "+ratingLabel("vocabulary", sd.Style.Vocabulary)+".",
		"Formality: "+ratingLabel("formality", sd.Style.Formality)+".",
		"Examples: "+ratingLabel("examples", sd.Style.Examples)+".",
	)
	if len(sd.Personality) > 0 {
		rules = append(rules, "Personality traits: "+strings.Join(sd.Personality, ", ")+".")
	}
	if len(sd.Audiences) > 0 {
		rules = append(rules, "Audiences: "+strings.Join(sd.Audiences, ", ")+".")
	}
	if len(sd.ContentTypes) > 0 {
		rules = append(rules, "Typical content: "+strings.Join(sd.ContentTypes, ", ")+".")
	}
	if sd.Industry != "" {
		rules = append(rules, "Industry: "+sd.Industry+".")
	}
	if sd.AudienceContext != "" {
		rules = append(rules, "Audience context: "+sd.AudienceContext)
	}
	rules = append(rules, formatRule("bullet points", sd.Preferences.UseBulletPoints),
		formatRule("section headers", sd.Preferences.UseHeaders),
		formatRule("a closing call to action", sd.Preferences.UseCTA))
	if sd.CustomInstructions != "" {
		rules = append(rules, "Additional instructions: "+sd.CustomInstructions)
	}
	return strings.Join(rules, "\n")
}

// ratingLabel names the nearest step of the scale; half-way values round up.
func ratingLabel(dimension string, rating float64) string {
	scale, ok := ratingScales[dimension]
	step := int(math.Round(rating))
	if !ok || step < 1 || step > len(scale) {
		return scale[models.DefaultRating-1]
	}
	return scale[step-1]
}

func formatRule(what string, use bool) string {
	if use {
		return "Use " + what + "."
	}
	return "Do not use " + what + "."
}
