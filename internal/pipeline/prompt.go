package pipeline

import "fmt"

// maxInsightChars bounds how much of the serialized research payload is
// embedded in the synthesis message.
const maxInsightChars = 4000

// maxPromptTokens bounds the completion length for the rendering
// instruction.
const maxPromptTokens = 300

const handheldInstruction = `You write single-paragraph video direction prompts for an AI video generator.
The video advertises a physical product. Direct a handheld, authentic, UGC-style
shot: the product held or used by a real person in a lived-in setting, natural
window lighting, slight camera shake, warm and personal tone. Keep the product
as the clear subject. Respond with the prompt text only.`

const cinematicInstruction = `You write single-paragraph video direction prompts for an AI video generator.
The video advertises a physical product. Direct a polished, cinematic shot:
studio or styled location, smooth dolly or orbit camera movement, dramatic
key lighting with soft fill, aspirational tone. Keep the product as the clear
subject. Respond with the prompt text only.`

// researchQuery frames the trend search around marketing signals for
// the subject.
func researchQuery(subject string) string {
	return fmt.Sprintf("current social media marketing trends and emotional appeal for %s advertising", subject)
}

// systemInstruction selects the creative direction for the style flag.
func systemInstruction(style Style) string {
	if style == StyleCinematic {
		return cinematicInstruction
	}
	return handheldInstruction
}

// synthesisMessage builds the single user message: subject, style, and
// a truncated serialization of the research insights.
func synthesisMessage(subject string, style Style, insights string) string {
	if len(insights) > maxInsightChars {
		insights = insights[:maxInsightChars]
	}
	return fmt.Sprintf(
		"Product: %s\nStyle: %s\n\nMarket research signals (JSON):\n%s\n\nWrite the video prompt.",
		subject, style, insights,
	)
}
