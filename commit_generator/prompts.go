package commit_generator

import (
	"fmt"
	"strings"
)

type Language string

const (
	LanguageSwedish Language = "sv"
	LanguageEnglish Language = "en"
)

type Style string

const (
	StyleConcise      Style = "concise"
	StyleDetailed     Style = "detailed"
	StyleConventional Style = "conventional"
)

// MaxPromptFiles caps how many staged paths are listed in the prompt.
const MaxPromptFiles = 30

// ParseLanguage maps a setting to a language. Anything but "sv" is English, ok reports an exact match.
func ParseLanguage(value string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(value))) {
	case LanguageSwedish:
		return LanguageSwedish, true
	case LanguageEnglish:
		return LanguageEnglish, true
	default:
		return LanguageEnglish, false
	}
}

// ParseStyle maps a setting to a style. Unknown values fall back to concise, ok reports an exact match.
func ParseStyle(value string) (Style, bool) {
	switch Style(strings.ToLower(strings.TrimSpace(value))) {
	case StyleConcise:
		return StyleConcise, true
	case StyleDetailed:
		return StyleDetailed, true
	case StyleConventional:
		return StyleConventional, true
	default:
		return StyleConcise, false
	}
}

var styleInstructions = map[Style]map[Language]string{
	StyleConventional: {
		LanguageSwedish: "Använd Conventional Commits (feat:, fix:, refactor:, docs:, chore:, test:, perf:, build:, ci:) och skriv en kort sammanfattning + ev. punktlista.",
		LanguageEnglish: "Use Conventional Commits (feat:, fix:, refactor:, docs:, chore:, test:, perf:, build:, ci:) with a short summary + optional bullet list.",
	},
	StyleDetailed: {
		LanguageSwedish: "Var tydlig och saklig, med en kort rubrik och 2–6 punkter som förklarar *varför* ändringen gjordes och *hur* den påverkar systemet.",
		LanguageEnglish: "Be clear and factual, with a short title and 2–6 bullets explaining *why* the change was made and *how* it impacts the system.",
	},
	StyleConcise: {
		LanguageSwedish: "Skriv en kort rubrik (max ~70 tecken) och 1–3 korta rader som förklarar ändringen på ett mänskligt men sakligt sätt.",
		LanguageEnglish: "Write a short title (~70 chars) and 1–3 short lines explaining the change in a human but factual way.",
	},
}

// StyleInstruction returns the directive for a style and language pair.
func StyleInstruction(style Style, language Language) string {
	style, _ = ParseStyle(string(style))
	language, _ = ParseLanguage(string(language))
	return styleInstructions[style][language]
}

type promptTexts struct {
	system       string
	repoLabel    string
	filesLabel   string
	styleLabel   string
	guideLabel   string
	diffIntro    string
	unknownRepo  string
	unknownFiles string
}

var texts = map[Language]promptTexts{
	LanguageSwedish: {
		system: `Du är en erfaren utvecklare som skriver utmärkta git commit-meddelanden.
Meddelandet ska vara lättläst för människor, korrekt, och fokusera på *varför* + *vad*.
Undvik intern jargong, stacktraces och brus.
Svara på **svenska**.`,
		repoLabel:    "Repository",
		filesLabel:   "Berörda filer",
		styleLabel:   "Stil",
		guideLabel:   "Riktlinjer",
		diffIntro:    "Nedan följer en *kompakt* git diff (Unified, U=0). Skapa ett passande commit-meddelande.",
		unknownRepo:  "okänt repo",
		unknownFiles: "okända filer",
	},
	LanguageEnglish: {
		system: `You are an experienced developer who writes excellent git commit messages.
The message must be easy for humans to read, accurate, and focus on *why* + *what*.
Avoid internal jargon, stack traces and noise.
Respond in **English**.`,
		repoLabel:    "Repository",
		filesLabel:   "Affected files",
		styleLabel:   "Style",
		guideLabel:   "Guidelines",
		diffIntro:    "Below is a *compact* git diff (Unified, U=0). Write a fitting commit message.",
		unknownRepo:  "unknown repo",
		unknownFiles: "unknown files",
	},
}

const (
	BeginDiffMarker = "--- BEGIN DIFF ---"
	EndDiffMarker   = "--- END DIFF ---"
)

// PromptPair is the system and user segments sent as two conversational turns.
type PromptPair struct {
	System string
	User   string
}

// SystemPrompt returns the fixed system instruction for a language.
func SystemPrompt(language Language) string {
	language, _ = ParseLanguage(string(language))
	return texts[language].system
}

// BuildPrompt constructs both prompt segments. Only the first MaxPromptFiles paths are listed.
func BuildPrompt(request CommitMessageRequest) PromptPair {
	language, _ := ParseLanguage(string(request.Language))
	style, _ := ParseStyle(string(request.Style))
	t := texts[language]

	filesText := t.unknownFiles
	if len(request.Files) > 0 {
		files := request.Files
		if len(files) > MaxPromptFiles {
			files = files[:MaxPromptFiles]
		}
		filesText = strings.Join(files, ", ")
	}

	repoName := request.RepoName
	if strings.TrimSpace(repoName) == "" {
		repoName = t.unknownRepo
	}

	var user strings.Builder
	user.WriteString(fmt.Sprintf("%s: %s\n", t.repoLabel, repoName))
	user.WriteString(fmt.Sprintf("%s: %s\n\n", t.filesLabel, filesText))
	user.WriteString(fmt.Sprintf("%s: %s\n", t.styleLabel, style))
	user.WriteString(fmt.Sprintf("%s: %s\n\n", t.guideLabel, StyleInstruction(style, language)))
	user.WriteString(t.diffIntro)
	user.WriteString("\n\n")
	user.WriteString(BeginDiffMarker + "\n")
	user.WriteString(request.Diff)
	user.WriteString("\n" + EndDiffMarker)

	return PromptPair{
		System: t.system,
		User:   strings.TrimSpace(user.String()),
	}
}
