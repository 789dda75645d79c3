package gemini

import (
	"fmt"
	"strings"
)

// Fixed prompts sent along with uploaded files.
const (
	ImageAnalysisPrompt    = "Analyze this image and describe its content with metadata."
	DocumentAnalysisPrompt = "Analyze this document and describe its content with metadata."
)

// SearchSummaryPromptFmt asks the model to summarize web results. It expects
// the rendered result block.
const SearchSummaryPromptFmt = `Analyze these web search results and provide a concise summary:
%s

Include 3 most relevant links. Format response for Telegram with proper MarkdownV2 escaping.`

// SentimentPromptFmt asks for a pipe separated Emotion|Score|Confidence line
// about the given text.
const SentimentPromptFmt = `Analyze this text's sentiment with:
1. Primary emotion (e.g., happy, angry)
2. Sentiment score (-1 to 1)
3. Confidence level (0-100%%)
Format as: Emotion|Score|Confidence

Text: %s`

// FileAnalysisPrompt picks the analysis prompt for an upload of mimeType.
func FileAnalysisPrompt(mimeType string) string {
	if strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return ImageAnalysisPrompt
	}
	return DocumentAnalysisPrompt
}

// SearchSummaryPrompt embeds rendered search results into the summary prompt.
func SearchSummaryPrompt(results string) string {
	return fmt.Sprintf(SearchSummaryPromptFmt, results)
}

// SentimentPrompt embeds text into the sentiment prompt.
func SentimentPrompt(text string) string {
	return fmt.Sprintf(SentimentPromptFmt, text)
}
