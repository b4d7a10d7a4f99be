package utils

// Server-side message catalog for API response bodies.
// English strings are the canonical wire messages; other locales are best effort.

// DefaultLocale is used when a request names no supported language.
const DefaultLocale = "en"

// SupportedLocales lists the locales the catalog carries, default first.
var SupportedLocales = []string{DefaultLocale, "zh"}

var translations = map[string]map[string]string{
	"en": {
		"health.ok":                "ok",
		"error.validation":         "Validation error",
		"error.internal":           "Internal server error",
		"error.method_not_allowed": "Method not allowed",
		"error.not_found":          "Not found",
		"error.body_too_large":     "Request body too large",
		"error.body_required":      "Request body is required",
		"error.invalid_json":       "Invalid JSON body",
		"survey.not_found":         "Survey response not found",
		"survey.exists":            "Survey response already exists for this session",
		"survey.invalid_session":   "Invalid session ID",
		"ai.preview_failed":        "Failed to generate preview",
		"ai.analyze_failed":        "Failed to analyze writing style",
		"ai.not_configured":        "AI provider is not configured",
		"ai.upstream_failed":       "AI provider request failed",
		"ai.empty_response":        "AI provider returned no choices",
		"ai.invalid_response":      "AI provider returned invalid JSON",
		"validation.required":      "Required",
		"validation.content":       "Content is required",
		"validation.samples_min":   "At least one writing sample is required",
		"validation.null":          "Expected a value, received null",
	},
	"zh": {
		"health.ok":                "好的",
		"error.validation":         "校验失败",
		"error.internal":           "服务器内部错误",
		"error.method_not_allowed": "不支持的请求方法",
		"error.not_found":          "未找到",
		"error.body_too_large":     "请求体过大",
		"error.body_required":      "缺少请求体",
		"error.invalid_json":       "JSON 格式错误",
		"survey.not_found":         "未找到问卷结果",
		"survey.exists":            "该会话的问卷结果已存在",
		"survey.invalid_session":   "会话 ID 无效",
		"ai.preview_failed":        "生成预览失败",
		"ai.analyze_failed":        "写作风格分析失败",
	},
}

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations[DefaultLocale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}
