package models

import "time"

// DefaultRating is the neutral midpoint of every 1..5 style dimension.
const DefaultRating = 3

// TimestampLayout matches the millisecond ISO-8601 form used for completedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp renders t in UTC using TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// SurveyResponse is the stored record of one session's writing-style preferences.
type SurveyResponse struct {
	ID                 int64    `json:"id"`
	SessionID          string   `json:"sessionId"`
	Tone               string   `json:"tone"`
	SentenceLength     int      `json:"sentenceLength"`
	Vocabulary         int      `json:"vocabulary"`
	Formality          int      `json:"formality"`
	Examples           int      `json:"examples"`
	Audiences          []string `json:"audiences"`
	ContentTypes       []string `json:"contentTypes"`
	Personality        []string `json:"personality"`
	UseBulletPoints    bool     `json:"useBulletPoints"`
	UseHeaders         bool     `json:"useHeaders"`
	UseCTA             bool     `json:"useCTA"`
	Industry           *string  `json:"industry"`
	CustomInstructions *string  `json:"customInstructions"`
	AudienceContext    *string  `json:"audienceContext"`
	CompletedAt        string   `json:"completedAt"`
}

// Clone returns a deep copy so callers never share slices or pointers with a store.
func (r *SurveyResponse) Clone() *SurveyResponse {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Audiences = cloneStrings(r.Audiences)
	cp.ContentTypes = cloneStrings(r.ContentTypes)
	cp.Personality = cloneStrings(r.Personality)
	cp.Industry = cloneStringPtr(r.Industry)
	cp.CustomInstructions = cloneStringPtr(r.CustomInstructions)
	cp.AudienceContext = cloneStringPtr(r.AudienceContext)
	return &cp
}

// NewSurveyResponse carries everything a store needs to create a record.
// The store assigns ID and CompletedAt.
type NewSurveyResponse struct {
	SessionID          string
	Tone               string
	SentenceLength     int
	Vocabulary         int
	Formality          int
	Examples           int
	Audiences          []string
	ContentTypes       []string
	Personality        []string
	UseBulletPoints    bool
	UseHeaders         bool
	UseCTA             bool
	Industry           *string
	CustomInstructions *string
	AudienceContext    *string
}

// Record builds the stored form of n with the given id and completion time.
func (n NewSurveyResponse) Record(id int64, completedAt time.Time) *SurveyResponse {
	return &SurveyResponse{
		ID:                 id,
		SessionID:          n.SessionID,
		Tone:               n.Tone,
		SentenceLength:     n.SentenceLength,
		Vocabulary:         n.Vocabulary,
		Formality:          n.Formality,
		Examples:           n.Examples,
		Audiences:          nonNilStrings(n.Audiences),
		ContentTypes:       nonNilStrings(n.ContentTypes),
		Personality:        nonNilStrings(n.Personality),
		UseBulletPoints:    n.UseBulletPoints,
		UseHeaders:         n.UseHeaders,
		UseCTA:             n.UseCTA,
		Industry:           cloneStringPtr(n.Industry),
		CustomInstructions: cloneStringPtr(n.CustomInstructions),
		AudienceContext:    cloneStringPtr(n.AudienceContext),
		CompletedAt:        Timestamp(completedAt),
	}
}

// NullableString distinguishes "field absent" (Set == false) from an explicit
// value or an explicit null (Set == true, Value == nil).
type NullableString struct {
	Set   bool
	Value *string
}

// SurveyResponsePatch is a partial update. Nil pointers and unset nullable
// fields leave the stored value untouched.
type SurveyResponsePatch struct {
	Tone               *string
	SentenceLength     *int
	Vocabulary         *int
	Formality          *int
	Examples           *int
	Audiences          *[]string
	ContentTypes       *[]string
	Personality        *[]string
	UseBulletPoints    *bool
	UseHeaders         *bool
	UseCTA             *bool
	Industry           NullableString
	CustomInstructions NullableString
	AudienceContext    NullableString
}

// Apply merges the patch onto r in place. ID, SessionID and CompletedAt are
// never touched here; the store stamps CompletedAt itself.
func (p SurveyResponsePatch) Apply(r *SurveyResponse) {
	if p.Tone != nil {
		r.Tone = *p.Tone
	}
	if p.SentenceLength != nil {
		r.SentenceLength = *p.SentenceLength
	}
	if p.Vocabulary != nil {
		r.Vocabulary = *p.Vocabulary
	}
	if p.Formality != nil {
		r.Formality = *p.Formality
	}
	if p.Examples != nil {
		r.Examples = *p.Examples
	}
	if p.Audiences != nil {
		r.Audiences = nonNilStrings(*p.Audiences)
	}
	if p.ContentTypes != nil {
		r.ContentTypes = nonNilStrings(*p.ContentTypes)
	}
	if p.Personality != nil {
		r.Personality = nonNilStrings(*p.Personality)
	}
	if p.UseBulletPoints != nil {
		r.UseBulletPoints = *p.UseBulletPoints
	}
	if p.UseHeaders != nil {
		r.UseHeaders = *p.UseHeaders
	}
	if p.UseCTA != nil {
		r.UseCTA = *p.UseCTA
	}
	if p.Industry.Set {
		r.Industry = cloneStringPtr(p.Industry.Value)
	}
	if p.CustomInstructions.Set {
		r.CustomInstructions = cloneStringPtr(p.CustomInstructions.Value)
	}
	if p.AudienceContext.Set {
		r.AudienceContext = cloneStringPtr(p.AudienceContext.Value)
	}
}

// StyleRatings groups the four 1..5 writing dimensions. Wizard state may sit
// between two steps, so values need not be whole.
type StyleRatings struct {
	SentenceLength float64 `json:"sentenceLength"`
	Vocabulary     float64 `json:"vocabulary"`
	Formality      float64 `json:"formality"`
	Examples       float64 `json:"examples"`
}

// FormatPreferences are the boolean layout toggles.
type FormatPreferences struct {
	UseBulletPoints bool `json:"useBulletPoints"`
	UseHeaders      bool `json:"useHeaders"`
	UseCTA          bool `json:"useCTA"`
}

// SurveyData is the wizard's working state, sent along with AI preview requests.
type SurveyData struct {
	Tone               string            `json:"tone,omitempty"`
	Style              StyleRatings      `json:"style"`
	Audiences          []string          `json:"audiences"`
	ContentTypes       []string          `json:"contentTypes"`
	Personality        []string          `json:"personality"`
	Preferences        FormatPreferences `json:"preferences"`
	Industry           string            `json:"industry,omitempty"`
	CustomInstructions string            `json:"customInstructions,omitempty"`
	AudienceContext    string            `json:"audienceContext,omitempty"`
}

// WritingSample is one piece of the user's existing writing.
type WritingSample struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return cloneStrings(in)
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
