package resume

import (
	"context"
	"fmt"
	"log"
	"strings"

	"reinvent/internal/llm"
)

// Completer is the slice of the LLM client the parser needs
type Completer interface {
	ChatJSON(ctx context.Context, messages []llm.ChatMessage, opts llm.ChatOptions, out interface{}) error
}

// Position is one entry of a parsed work history
type Position struct {
	Title      string   `json:"title"`
	Company    string   `json:"company"`
	StartDate  string   `json:"start_date,omitempty"`
	EndDate    string   `json:"end_date,omitempty"`
	Highlights []string `json:"highlights,omitempty"`
}

// Profile is the structured result of parsing a resume
type Profile struct {
	FullName        string     `json:"full_name"`
	Headline        string     `json:"headline,omitempty"`
	YearsExperience int        `json:"years_experience"`
	Skills          []string   `json:"skills,omitempty"`
	Positions       []Position `json:"positions,omitempty"`
	Education       []string   `json:"education,omitempty"`
}

// Parser turns raw resume text into a Profile via the LLM
type Parser struct {
	completer Completer
	model     string
}

// NewParser creates a resume parser. model may be empty to use the
// client default.
func NewParser(completer Completer, model string) *Parser {
	return &Parser{completer: completer, model: model}
}

const parsePrompt = `Extract structured data from this resume text.

Return a JSON object with exactly these fields:
- "full_name": the candidate's name
- "headline": current role or professional headline, if stated
- "years_experience": total years of professional experience as an integer (estimate from dates if not stated)
- "skills": list of technical and professional skills
- "positions": work history, each with "title", "company", "start_date", "end_date", "highlights" (dates as written in the resume, "highlights" as short strings)
- "education": list of degrees or certifications as strings

Use empty strings or empty lists for anything the resume does not contain. Do not invent data.

Resume text:
%s`

// maxResumeChars keeps the prompt inside the context window
const maxResumeChars = 24000

// Parse extracts a structured profile from resume text
func (p *Parser) Parse(ctx context.Context, text string) (*Profile, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty resume text")
	}
	if len(text) > maxResumeChars {
		text = text[:maxResumeChars]
	}

	messages := []llm.ChatMessage{
		{Role: "system", Content: "You are a resume parser. Extract facts exactly as written, output only JSON."},
		{Role: "user", Content: fmt.Sprintf(parsePrompt, text)},
	}

	var profile Profile
	if err := p.completer.ChatJSON(ctx, messages, llm.ChatOptions{Model: p.model}, &profile); err != nil {
		return nil, fmt.Errorf("resume parse failed: %w", err)
	}

	if profile.FullName == "" && len(profile.Positions) == 0 {
		return nil, fmt.Errorf("parse produced no usable profile data")
	}

	log.Printf("[Resume] Parsed profile: %d positions, %d skills", len(profile.Positions), len(profile.Skills))
	return &profile, nil
}
