package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/soaringjerry/stylus/internal/models"
	"github.com/soaringjerry/stylus/internal/utils"
)

// requestValidate checks decoded request bodies. Field names in errors are
// taken from json tags so issue paths match the wire format.
var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
	requestValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = requestValidate.RegisterValidation("whole", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return f == math.Trunc(f)
	})
}

// Fields of the stored record that reject an explicit null.
var nonNullableFields = []string{
	"sessionId", "tone",
	"sentenceLength", "vocabulary", "formality", "examples",
	"audiences", "contentTypes", "personality",
	"useBulletPoints", "useHeaders", "useCTA",
}

type surveyCreateInput struct {
	SessionID          *string  `json:"sessionId" validate:"required,min=1"`
	Tone               *string  `json:"tone" validate:"required"`
	SentenceLength     *float64 `json:"sentenceLength" validate:"omitempty,min=1,max=5,whole"`
	Vocabulary         *float64 `json:"vocabulary" validate:"omitempty,min=1,max=5,whole"`
	Formality          *float64 `json:"formality" validate:"omitempty,min=1,max=5,whole"`
	Examples           *float64 `json:"examples" validate:"omitempty,min=1,max=5,whole"`
	Audiences          []string `json:"audiences"`
	ContentTypes       []string `json:"contentTypes"`
	Personality        []string `json:"personality"`
	UseBulletPoints    *bool    `json:"useBulletPoints"`
	UseHeaders         *bool    `json:"useHeaders"`
	UseCTA             *bool    `json:"useCTA"`
	Industry           *string  `json:"industry"`
	CustomInstructions *string  `json:"customInstructions"`
	AudienceContext    *string  `json:"audienceContext"`
}

// id, sessionId and completedAt are not part of the update shape and are dropped on decode.
type surveyUpdateInput struct {
	Tone               *string  `json:"tone"`
	SentenceLength     *float64 `json:"sentenceLength" validate:"omitempty,min=1,max=5,whole"`
	Vocabulary         *float64 `json:"vocabulary" validate:"omitempty,min=1,max=5,whole"`
	Formality          *float64 `json:"formality" validate:"omitempty,min=1,max=5,whole"`
	Examples           *float64 `json:"examples" validate:"omitempty,min=1,max=5,whole"`
	Audiences          []string `json:"audiences"`
	ContentTypes       []string `json:"contentTypes"`
	Personality        []string `json:"personality"`
	UseBulletPoints    *bool    `json:"useBulletPoints"`
	UseHeaders         *bool    `json:"useHeaders"`
	UseCTA             *bool    `json:"useCTA"`
	Industry           *string  `json:"industry"`
	CustomInstructions *string  `json:"customInstructions"`
	AudienceContext    *string  `json:"audienceContext"`
}

type styleInput struct {
	SentenceLength *float64 `json:"sentenceLength" validate:"omitempty,min=1,max=5"`
	Vocabulary     *float64 `json:"vocabulary" validate:"omitempty,min=1,max=5"`
	Formality      *float64 `json:"formality" validate:"omitempty,min=1,max=5"`
	Examples       *float64 `json:"examples" validate:"omitempty,min=1,max=5"`
}

type preferencesInput struct {
	UseBulletPoints *bool `json:"useBulletPoints"`
	UseHeaders      *bool `json:"useHeaders"`
	UseCTA          *bool `json:"useCTA"`
}

type surveyDataInput struct {
	Tone               *string           `json:"tone"`
	Style              *styleInput       `json:"style"`
	Audiences          []string          `json:"audiences"`
	ContentTypes       []string          `json:"contentTypes"`
	Personality        []string          `json:"personality"`
	Preferences        *preferencesInput `json:"preferences"`
	Industry           *string           `json:"industry"`
	CustomInstructions *string           `json:"customInstructions"`
	AudienceContext    *string           `json:"audienceContext"`
}

type previewInput struct {
	Content    *string          `json:"content" validate:"required,min=1"`
	SurveyData *surveyDataInput `json:"surveyData" validate:"required"`
}

type sampleInput struct {
	Title   *string `json:"title" validate:"required"`
	Content *string `json:"content" validate:"required"`
}

type styleAnalysisInput struct {
	Samples []sampleInput `json:"samples" validate:"required,min=1,dive"`
}

// PreviewRequest is a validated /ai/preview body with defaults applied.
type PreviewRequest struct {
	Content    string
	SurveyData models.SurveyData
}

// StyleAnalysisRequest is a validated /ai/analyze-style body.
type StyleAnalysisRequest struct {
	Samples []models.WritingSample
}

// ValidateSurveyCreate checks a creation body and fills defaults for absent fields.
func ValidateSurveyCreate(body []byte) (models.NewSurveyResponse, error) {
	var in surveyCreateInput
	fields, decodeIssues, err := decodeObject(body, &in)
	if err != nil {
		return models.NewSurveyResponse{}, err
	}
	if err := checkStruct(&in, fields, decodeIssues); err != nil {
		return models.NewSurveyResponse{}, err
	}
	return models.NewSurveyResponse{
		SessionID:          *in.SessionID,
		Tone:               *in.Tone,
		SentenceLength:     rating(in.SentenceLength),
		Vocabulary:         rating(in.Vocabulary),
		Formality:          rating(in.Formality),
		Examples:           rating(in.Examples),
		Audiences:          orEmpty(in.Audiences),
		ContentTypes:       orEmpty(in.ContentTypes),
		Personality:        orEmpty(in.Personality),
		UseBulletPoints:    lo.FromPtr(in.UseBulletPoints),
		UseHeaders:         lo.FromPtr(in.UseHeaders),
		UseCTA:             lo.FromPtr(in.UseCTA),
		Industry:           in.Industry,
		CustomInstructions: in.CustomInstructions,
		AudienceContext:    in.AudienceContext,
	}, nil
}

// ValidateSurveyUpdate checks a partial update body. Only keys present in the
// body end up in the patch; an explicit null clears a nullable field.
func ValidateSurveyUpdate(body []byte) (models.SurveyResponsePatch, error) {
	var in surveyUpdateInput
	fields, decodeIssues, err := decodeObject(body, &in)
	if err != nil {
		return models.SurveyResponsePatch{}, err
	}
	if err := checkStruct(&in, fields, decodeIssues); err != nil {
		return models.SurveyResponsePatch{}, err
	}
	patch := models.SurveyResponsePatch{
		Tone:               in.Tone,
		SentenceLength:     ratingPtr(in.SentenceLength),
		Vocabulary:         ratingPtr(in.Vocabulary),
		Formality:          ratingPtr(in.Formality),
		Examples:           ratingPtr(in.Examples),
		UseBulletPoints:    in.UseBulletPoints,
		UseHeaders:         in.UseHeaders,
		UseCTA:             in.UseCTA,
		Industry:           nullableField(fields, "industry", in.Industry),
		CustomInstructions: nullableField(fields, "customInstructions", in.CustomInstructions),
		AudienceContext:    nullableField(fields, "audienceContext", in.AudienceContext),
	}
	if _, ok := fields["audiences"]; ok {
		patch.Audiences = lo.ToPtr(orEmpty(in.Audiences))
	}
	if _, ok := fields["contentTypes"]; ok {
		patch.ContentTypes = lo.ToPtr(orEmpty(in.ContentTypes))
	}
	if _, ok := fields["personality"]; ok {
		patch.Personality = lo.ToPtr(orEmpty(in.Personality))
	}
	return patch, nil
}

// ValidatePreviewRequest checks an AI preview body and applies survey-data
// defaults. Style ratings here may be fractional.
func ValidatePreviewRequest(body []byte) (PreviewRequest, error) {
	var in previewInput
	_, decodeIssues, err := decodeObject(body, &in)
	if err != nil {
		return PreviewRequest{}, err
	}
	if err := checkStruct(&in, nil, decodeIssues); err != nil {
		return PreviewRequest{}, err
	}
	sd := in.SurveyData
	style := lo.FromPtr(sd.Style)
	prefs := lo.FromPtr(sd.Preferences)
	return PreviewRequest{
		Content: *in.Content,
		SurveyData: models.SurveyData{
			Tone: lo.FromPtr(sd.Tone),
			Style: models.StyleRatings{
				SentenceLength: lo.FromPtrOr(style.SentenceLength, models.DefaultRating),
				Vocabulary:     lo.FromPtrOr(style.Vocabulary, models.DefaultRating),
				Formality:      lo.FromPtrOr(style.Formality, models.DefaultRating),
				Examples:       lo.FromPtrOr(style.Examples, models.DefaultRating),
			},
			Audiences:    orEmpty(sd.Audiences),
			ContentTypes: orEmpty(sd.ContentTypes),
			Personality:  orEmpty(sd.Personality),
			Preferences: models.FormatPreferences{
				UseBulletPoints: lo.FromPtr(prefs.UseBulletPoints),
				UseHeaders:      lo.FromPtr(prefs.UseHeaders),
				UseCTA:          lo.FromPtr(prefs.UseCTA),
			},
			Industry:           lo.FromPtr(sd.Industry),
			CustomInstructions: lo.FromPtr(sd.CustomInstructions),
			AudienceContext:    lo.FromPtr(sd.AudienceContext),
		},
	}, nil
}

// ValidateStyleAnalysisRequest checks an AI style-analysis body.
func ValidateStyleAnalysisRequest(body []byte) (StyleAnalysisRequest, error) {
	var in styleAnalysisInput
	_, decodeIssues, err := decodeObject(body, &in)
	if err != nil {
		return StyleAnalysisRequest{}, err
	}
	if err := checkStruct(&in, nil, decodeIssues); err != nil {
		return StyleAnalysisRequest{}, err
	}
	samples := lo.Map(in.Samples, func(s sampleInput, _ int) models.WritingSample {
		return models.WritingSample{Title: *s.Title, Content: *s.Content}
	})
	return StyleAnalysisRequest{Samples: samples}, nil
}

// decodeObject unmarshals body into dst one field at a time so that every
// mistyped field is reported, not only the first. It returns the raw
// top-level fields (callers use them to tell absent keys from explicit
// nulls) and the per-field decode issues. A non-nil error means the body
// itself is unusable.
func decodeObject(body []byte, dst any) (map[string]json.RawMessage, []Issue, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil, NewValidationError([]Issue{{Path: []any{}, Message: utils.T("en", "error.body_required")}})
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, nil, NewValidationError([]Issue{decodeIssue(err, []any{})})
	}
	if fields == nil {
		return nil, nil, NewValidationError([]Issue{{Path: []any{}, Message: "Expected object, received null"}})
	}
	return fields, decodeFields(reflect.ValueOf(dst).Elem(), fields, []any{}), nil
}

// decodeFields fills the struct v from fields in declaration order. Nested
// objects bound to struct pointers are decoded the same way, so their issues
// carry full paths.
func decodeFields(v reflect.Value, fields map[string]json.RawMessage, prefix []any) []Issue {
	var issues []Issue
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		raw, ok := fields[name]
		if !ok {
			continue
		}
		path := append(slices.Clone(prefix), name)
		fv := v.Field(i)

		if fv.Kind() == reflect.Ptr && fv.Type().Elem().Kind() == reflect.Struct {
			var nested map[string]json.RawMessage
			if json.Unmarshal(raw, &nested) == nil && nested != nil {
				fv.Set(reflect.New(fv.Type().Elem()))
				issues = append(issues, decodeFields(fv.Elem(), nested, path)...)
				continue
			}
		}
		if err := json.Unmarshal(raw, fv.Addr().Interface()); err != nil {
			issues = append(issues, decodeIssue(err, path))
			continue
		}
		if fv.Kind() == reflect.Slice {
			issues = append(issues, nullElementIssues(raw, fv.Type().Elem(), path)...)
		}
	}
	return issues
}

// nullElementIssues reports null array elements, which encoding/json would
// otherwise turn into zero values.
func nullElementIssues(raw json.RawMessage, elem reflect.Type, path []any) []Issue {
	if elem.Kind() == reflect.Ptr {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var issues []Issue
	for i, item := range items {
		if isJSONNull(item) {
			issues = append(issues, Issue{
				Path:    append(slices.Clone(path), i),
				Message: fmt.Sprintf("Expected %s, received null", describeType(elem)),
			})
		}
	}
	return issues
}

// checkStruct merges decode issues with explicit-null rejections (when
// fields is non-nil) and validator tag failures. Validator failures under a
// path that already has an issue are dropped, so each bad field is reported
// once.
func checkStruct(in any, fields map[string]json.RawMessage, decodeIssues []Issue) error {
	issues := slices.Clone(decodeIssues)
	for _, name := range nonNullableFields {
		if raw, ok := fields[name]; ok && isJSONNull(raw) {
			issues = append(issues, Issue{Path: []any{name}, Message: utils.T("en", "validation.null")})
		}
	}
	reported := slices.Clone(issues)

	if err := requestValidate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		tagIssues := lo.Map(verrs, func(fe validator.FieldError, _ int) Issue {
			return Issue{Path: issuePath(fe.Namespace()), Message: issueMessage(fe)}
		})
		issues = append(issues, lo.Filter(tagIssues, func(is Issue, _ int) bool {
			return !lo.SomeBy(reported, func(r Issue) bool { return hasPathPrefix(is.Path, r.Path) })
		})...)
	}

	if len(issues) > 0 {
		return NewValidationError(issues)
	}
	return nil
}

func hasPathPrefix(path, prefix []any) bool {
	if len(prefix) == 0 || len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// rating converts a validated whole-number rating, defaulting when absent.
func rating(v *float64) int {
	if v == nil {
		return models.DefaultRating
	}
	return int(*v)
}

func ratingPtr(v *float64) *int {
	if v == nil {
		return nil
	}
	return lo.ToPtr(int(*v))
}

// issuePath turns "previewInput.surveyData.style.formality" or
// "styleAnalysisInput.samples[0].title" into a wire path without the root type.
func issuePath(namespace string) []any {
	path := []any{}
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return path
	}
	for _, seg := range strings.Split(rest, ".") {
		name, idx, hasIdx := strings.Cut(seg, "[")
		path = append(path, name)
		for hasIdx {
			var key string
			key, idx, _ = strings.Cut(idx, "]")
			if n, err := strconv.Atoi(key); err == nil {
				path = append(path, n)
			} else {
				path = append(path, key)
			}
			_, idx, hasIdx = strings.Cut(idx, "[")
		}
	}
	return path
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return utils.T("en", "validation.required")
	case "min":
		switch fe.Kind() {
		case reflect.String:
			if fe.Field() == "content" {
				return utils.T("en", "validation.content")
			}
			return fmt.Sprintf("String must contain at least %s character(s)", fe.Param())
		case reflect.Slice:
			if fe.Field() == "samples" {
				return utils.T("en", "validation.samples_min")
			}
			return fmt.Sprintf("Array must contain at least %s element(s)", fe.Param())
		default:
			return fmt.Sprintf("Number must be greater than or equal to %s", fe.Param())
		}
	case "max":
		return fmt.Sprintf("Number must be less than or equal to %s", fe.Param())
	case "whole":
		return "Expected integer, received float"
	}
	return fmt.Sprintf("Invalid value (failed %s check)", fe.Tag())
}

func decodeIssue(err error, base []any) Issue {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		path := slices.Clone(base)
		if typeErr.Field != "" {
			for _, p := range strings.Split(typeErr.Field, ".") {
				path = append(path, p)
			}
		}
		return Issue{Path: path, Message: fmt.Sprintf("Expected %s, received %s", describeType(typeErr.Type), typeErr.Value)}
	}
	return Issue{Path: slices.Clone(base), Message: utils.T("en", "error.invalid_json")}
}

func describeType(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return t.String()
}

func nullableField(fields map[string]json.RawMessage, name string, v *string) models.NullableString {
	if _, ok := fields[name]; !ok {
		return models.NullableString{}
	}
	return models.NullableString{Set: true, Value: v}
}

func orEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
