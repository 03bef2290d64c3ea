package tutor

import (
	"fmt"
	"strings"

	"github.com/mirrorsensei/sensei/internal/study"
)

const (
	defaultCategoryInstruction = "Provide detailed educational analysis."
	defaultLevelInstruction    = "Adjust vocabulary and complexity to suit the selected level."

	translatorSystemPrompt = "You are a professional academic translator specializing in English and Bengali. Maintain the educational tone."
	qaSystemPrompt         = "You are an instant Q&A assistant. Answer the student's question based strictly on the provided context material. Be concise and helpful."

	noContext = "No current context."
)

// BuildSystemInstruction composes the study instruction for one request from
// the admin prompts of the category and the prompt of the level.
func BuildSystemInstruction(category study.Category, level study.Level, lang study.Language,
	adminPrompts []study.AdminPrompt, levelPrompts []study.LevelPrompt) string {

	var b strings.Builder
	fmt.Fprintf(&b, "You are 'Mirror Sensei', a world-class educational AI tutor specialized in %s.\n\n", category)

	b.WriteString("ADMIN TRAINING RULES FOR THIS CATEGORY:\n")
	b.WriteString(categoryBlock(category, adminPrompts))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "DIFFICULTY LEVEL (%s) RULES:\n", level)
	b.WriteString(levelBlock(level, levelPrompts))
	b.WriteString("\n\n")

	b.WriteString("OUTPUT REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- Primary Language: %s.\n", lang.DisplayName())
	b.WriteString("- Format: Clear, structured, and easy to read.\n")
	b.WriteString("- Tone: Encouraging, scholarly yet accessible.\n")
	fmt.Fprintf(&b, "- If the user asks for a specific topic in %s, provide deep insights based on the training rules above.", category)

	return b.String()
}

// categoryBlock keeps store order; an empty prompt still yields a labeled line.
func categoryBlock(category study.Category, prompts []study.AdminPrompt) string {
	var lines []string
	for _, p := range prompts {
		if p.Category != category {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s Context]: %s", p.SubCategory, p.Prompt))
	}
	if len(lines) == 0 {
		return defaultCategoryInstruction
	}
	return strings.Join(lines, "\n")
}

// levelBlock uses the first prompt for the level. An empty stored prompt
// counts as absent.
func levelBlock(level study.Level, prompts []study.LevelPrompt) string {
	for _, p := range prompts {
		if p.Level != level {
			continue
		}
		if p.Prompt == "" {
			break
		}
		return p.Prompt
	}
	return defaultLevelInstruction
}

func translatePrompt(text string, target study.Language) string {
	if target == study.Bengali {
		return "Translate the following English study material into natural, educational Bengali: " + text
	}
	return "Translate the following Bengali study material into clear, academic English: " + text
}

func qaPrompt(question, context string) string {
	if strings.TrimSpace(context) == "" {
		context = noContext
	}
	return fmt.Sprintf("CONTEXT MATERIAL:\n%s\n\nSTUDENT QUESTION:\n%s", context, question)
}
