package services

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/stylus/internal/models"
)

func requireIssues(t *testing.T, err error) []Issue {
	t.Helper()
	require.Error(t, err)
	se, ok := AsServiceError(err)
	require.True(t, ok, "want ServiceError, got %T", err)
	assert.Equal(t, ErrorInvalid, se.Code)
	assert.Equal(t, "error.validation", se.Key)
	require.NotEmpty(t, se.Issues)
	return se.Issues
}

func TestValidateSurveyCreateAppliesDefaults(t *testing.T) {
	in, err := ValidateSurveyCreate([]byte(`{"sessionId":"s1","tone":"friendly"}`))
	require.NoError(t, err)

	assert.Equal(t, "s1", in.SessionID)
	assert.Equal(t, "friendly", in.Tone)
	assert.Equal(t, 3, in.SentenceLength)
	assert.Equal(t, 3, in.Vocabulary)
	assert.Equal(t, 3, in.Formality)
	assert.Equal(t, 3, in.Examples)
	assert.Equal(t, []string{}, in.Audiences)
	assert.Equal(t, []string{}, in.ContentTypes)
	assert.Equal(t, []string{}, in.Personality)
	assert.False(t, in.UseBulletPoints)
	assert.Nil(t, in.Industry)
}

func TestValidateSurveyCreateKeepsSuppliedFields(t *testing.T) {
	body := `{"sessionId":"s2","tone":"witty","formality":5,"audiences":["devs"],"useCTA":true,"industry":"SaaS","id":99,"completedAt":"x"}`
	in, err := ValidateSurveyCreate([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, 5, in.Formality)
	assert.Equal(t, []string{"devs"}, in.Audiences)
	assert.True(t, in.UseCTA)
	require.NotNil(t, in.Industry)
	assert.Equal(t, "SaaS", *in.Industry)
}

func TestValidateSurveyCreateMissingTone(t *testing.T) {
	_, err := ValidateSurveyCreate([]byte(`{"sessionId":"s1"}`))
	issues := requireIssues(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, []any{"tone"}, issues[0].Path)
	assert.Equal(t, "Required", issues[0].Message)
}

func TestValidateSurveyCreateRatingOutOfRange(t *testing.T) {
	_, err := ValidateSurveyCreate([]byte(`{"sessionId":"s1","tone":"x","vocabulary":0,"examples":6}`))
	issues := requireIssues(t, err)

	require.Len(t, issues, 2)
	assert.Equal(t, []any{"vocabulary"}, issues[0].Path)
	assert.Equal(t, "Number must be greater than or equal to 1", issues[0].Message)
	assert.Equal(t, []any{"examples"}, issues[1].Path)
	assert.Equal(t, "Number must be less than or equal to 5", issues[1].Message)
}

func TestValidateSurveyCreateTypeMismatch(t *testing.T) {
	_, err := ValidateSurveyCreate([]byte(`{"sessionId":"s1","tone":42}`))
	issues := requireIssues(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, []any{"tone"}, issues[0].Path)
	assert.Equal(t, "Expected string, received number", issues[0].Message)
}

func TestValidateSurveyCreateRejectsNullOnRequiredField(t *testing.T) {
	_, err := ValidateSurveyCreate([]byte(`{"sessionId":"s1","tone":null}`))
	issues := requireIssues(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, []any{"tone"}, issues[0].Path)
	assert.Equal(t, "Expected a value, received null", issues[0].Message)
}

func TestValidateSurveyCreateBadBodies(t *testing.T) {
	cases := map[string]string{
		"empty":     ``,
		"malformed": `{"sessionId":`,
		"array":     `[1,2]`,
		"null":      `null`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateSurveyCreate([]byte(body))
			issues := requireIssues(t, err)
			assert.Equal(t, []any{}, issues[0].Path)
		})
	}
}

func TestValidateSurveyUpdateOnlyPresentFields(t *testing.T) {
	patch, err := ValidateSurveyUpdate([]byte(`{"tone":"formal","sessionId":"hijack","id":7}`))
	require.NoError(t, err)

	require.NotNil(t, patch.Tone)
	assert.Equal(t, "formal", *patch.Tone)
	assert.Nil(t, patch.SentenceLength)
	assert.Nil(t, patch.Audiences)
	assert.False(t, patch.Industry.Set)
}

func TestValidateSurveyUpdateNullClearsNullable(t *testing.T) {
	patch, err := ValidateSurveyUpdate([]byte(`{"industry":null,"personality":[]}`))
	require.NoError(t, err)

	assert.True(t, patch.Industry.Set)
	assert.Nil(t, patch.Industry.Value)
	require.NotNil(t, patch.Personality)
	assert.Equal(t, []string{}, *patch.Personality)
}

func TestValidateSurveyUpdateRejectsNullArray(t *testing.T) {
	_, err := ValidateSurveyUpdate([]byte(`{"audiences":null}`))
	issues := requireIssues(t, err)
	assert.Equal(t, []any{"audiences"}, issues[0].Path)
}

func TestValidateSurveyUpdateEmptyObjectIsValid(t *testing.T) {
	patch, err := ValidateSurveyUpdate([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, models.SurveyResponsePatch{}, patch)
}

func TestValidatePreviewRequestDefaults(t *testing.T) {
	req, err := ValidatePreviewRequest([]byte(`{"content":"Hello world","surveyData":{"style":{"formality":5}}}`))
	require.NoError(t, err)

	assert.Equal(t, "Hello world", req.Content)
	assert.Equal(t, models.StyleRatings{SentenceLength: 3, Vocabulary: 3, Formality: 5, Examples: 3}, req.SurveyData.Style)
	assert.Equal(t, []string{}, req.SurveyData.Audiences)
	assert.False(t, req.SurveyData.Preferences.UseHeaders)
}

func TestValidatePreviewRequestEmptyContent(t *testing.T) {
	_, err := ValidatePreviewRequest([]byte(`{"content":"","surveyData":{}}`))
	issues := requireIssues(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, []any{"content"}, issues[0].Path)
	assert.Equal(t, "Content is required", issues[0].Message)
}

func TestValidatePreviewRequestNestedRange(t *testing.T) {
	_, err := ValidatePreviewRequest([]byte(`{"content":"x","surveyData":{"style":{"examples":9}}}`))
	issues := requireIssues(t, err)

	assert.Equal(t, []any{"surveyData", "style", "examples"}, issues[0].Path)
}

func TestValidatePreviewRequestMissingSurveyData(t *testing.T) {
	_, err := ValidatePreviewRequest([]byte(`{"content":"x"}`))
	issues := requireIssues(t, err)

	assert.Equal(t, []any{"surveyData"}, issues[0].Path)
	assert.Equal(t, "Required", issues[0].Message)
}

func TestValidateStyleAnalysisRequest(t *testing.T) {
	req, err := ValidateStyleAnalysisRequest([]byte(`{"samples":[{"title":"Post","content":"Body"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []models.WritingSample{{Title: "Post", Content: "Body"}}, req.Samples)
}

func TestValidateStyleAnalysisRequestNeedsOneSample(t *testing.T) {
	_, err := ValidateStyleAnalysisRequest([]byte(`{"samples":[]}`))
	issues := requireIssues(t, err)

	assert.Equal(t, []any{"samples"}, issues[0].Path)
	assert.Equal(t, "At least one writing sample is required", issues[0].Message)
}

func TestValidateStyleAnalysisRequestSampleFieldPath(t *testing.T) {
	_, err := ValidateStyleAnalysisRequest([]byte(`{"samples":[{"title":"ok","content":"ok"},{"content":"no title"}]}`))
	issues := requireIssues(t, err)

	assert.Equal(t, []any{"samples", 1, "title"}, issues[0].Path)
}

func TestIssuePath(t *testing.T) {
	assert.Equal(t, []any{"tone"}, issuePath("surveyCreateInput.tone"))
	assert.Equal(t, []any{"samples", 0, "content"}, issuePath("styleAnalysisInput.samples[0].content"))
	assert.Equal(t, []any{}, issuePath("root"))
}

func TestValidateSurveyCreateRejectsNullArrayElements(t *testing.T) {
	_, err := ValidateSurveyCreate([]byte(`{"sessionId":"s1","tone":"x","audiences":["a",null],"personality":[null]}`))
	issues := requireIssues(t, err)

	require.Len(t, issues, 2)
	assert.Equal(t, []any{"audiences", 1}, issues[0].Path)
	assert.Equal(t, "Expected string, received null", issues[0].Message)
	assert.Equal(t, []any{"personality", 0}, issues[1].Path)
}

func TestValidateSurveyUpdateRejectsNullArrayElements(t *testing.T) {
	_, err := ValidateSurveyUpdate([]byte(`{"contentTypes":[null,"blog"]}`))
	issues := requireIssues(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, []any{"contentTypes", 0}, issues[0].Path)
}

func TestValidatePreviewRequestRejectsNullArrayElements(t *testing.T) {
	_, err := ValidatePreviewRequest([]byte(`{"content":"x","surveyData":{"audiences":["devs",null]}}`))
	issues := requireIssues(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, []any{"surveyData", "audiences", 1}, issues[0].Path)
	assert.Equal(t, "Expected string, received null", issues[0].Message)
}

func TestValidateStyleAnalysisRequestNullSample(t *testing.T) {
	_, err := ValidateStyleAnalysisRequest([]byte(`{"samples":[{"title":"a","content":"b"},null]}`))
	issues := requireIssues(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, []any{"samples", 1}, issues[0].Path)
	assert.Equal(t, "Expected object, received null", issues[0].Message)
}

func TestValidateSurveyRatingsAcceptWholeNumbersWrittenAsFloats(t *testing.T) {
	in, err := ValidateSurveyCreate([]byte(`{"sessionId":"s1","tone":"x","formality":4.0}`))
	require.NoError(t, err)
	assert.Equal(t, 4, in.Formality)

	patch, err := ValidateSurveyUpdate([]byte(`{"examples":2.0}`))
	require.NoError(t, err)
	require.NotNil(t, patch.Examples)
	assert.Equal(t, 2, *patch.Examples)
}

func TestValidateSurveyRatingsRejectFractions(t *testing.T) {
	_, err := ValidateSurveyCreate([]byte(`{"sessionId":"s1","tone":"x","formality":2.5}`))
	issues := requireIssues(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, []any{"formality"}, issues[0].Path)
	assert.Equal(t, "Expected integer, received float", issues[0].Message)
}

func TestValidatePreviewRequestAcceptsFractionalStyle(t *testing.T) {
	req, err := ValidatePreviewRequest([]byte(`{"content":"x","surveyData":{"style":{"formality":2.5,"examples":4.0}}}`))
	require.NoError(t, err)
	assert.Equal(t, 2.5, req.SurveyData.Style.Formality)
	assert.Equal(t, 4.0, req.SurveyData.Style.Examples)
}

func TestValidateSurveyCreateReportsEveryBadField(t *testing.T) {
	_, err := ValidateSurveyCreate([]byte(`{"sessionId":"s1","tone":7,"formality":9,"vocabulary":"z"}`))
	issues := requireIssues(t, err)

	paths := lo.Map(issues, func(is Issue, _ int) any { return is.Path })
	assert.ElementsMatch(t, []any{[]any{"tone"}, []any{"vocabulary"}, []any{"formality"}}, paths)
	for _, is := range issues {
		switch is.Path[0] {
		case "vocabulary":
			assert.Equal(t, "Expected number, received string", is.Message)
		case "formality":
			assert.Equal(t, "Number must be less than or equal to 5", is.Message)
		case "tone":
			assert.Equal(t, "Expected string, received number", is.Message)
		}
	}
}

func TestValidatePreviewRequestReportsNestedTypeAndRange(t *testing.T) {
	_, err := ValidatePreviewRequest([]byte(`{"content":"x","surveyData":{"tone":1,"style":{"formality":0,"vocabulary":true}}}`))
	issues := requireIssues(t, err)

	paths := lo.Map(issues, func(is Issue, _ int) any { return is.Path })
	assert.ElementsMatch(t, []any{
		[]any{"surveyData", "tone"},
		[]any{"surveyData", "style", "vocabulary"},
		[]any{"surveyData", "style", "formality"},
	}, paths)
}
