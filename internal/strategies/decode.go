package strategies

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/jonathan/resume-parser/internal/llm"
	"github.com/jonathan/resume-parser/internal/schemas"
	"github.com/jonathan/resume-parser/internal/types"
)

// wireResume mirrors ParsedResume but accepts bullets as plain strings or {"text": ...} objects
type wireResume struct {
	Name     string        `json:"name"`
	Title    string        `json:"title"`
	Email    string        `json:"email"`
	Phone    string        `json:"phone"`
	Location string        `json:"location"`
	Summary  string        `json:"summary"`
	Sections []wireSection `json:"sections"`
}

type wireSection struct {
	Title   string       `json:"title"`
	Bullets []wireBullet `json:"bullets"`
}

type wireBullet struct {
	Text string
}

func (b *wireBullet) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		b.Text = s
		return nil
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	b.Text = obj.Text
	return nil
}

// DecodeResume turns raw model output into a post-processed ParsedResume.
// Near-valid JSON is repaired before decoding; the result must satisfy the ParsedResume schema.
func DecodeResume(raw string) (*types.ParsedResume, error) {
	text := llm.CleanJSONBlock(raw)
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Message: "empty model response"}
	}
	if !json.Valid([]byte(text)) {
		text = llm.RepairJSON(text)
		if !json.Valid([]byte(text)) {
			return nil, &ParseError{Message: "model response is not valid JSON"}
		}
	}

	if err := schemas.ValidateParsedResume(text); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			return nil, &ParseError{Message: "model response does not match resume schema: " + ve.Summary()}
		}
		return nil, &ParseError{Message: "failed to check model response", Cause: err}
	}

	var wire wireResume
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return nil, &ParseError{Message: "failed to parse JSON response", Cause: err}
	}

	resume := &types.ParsedResume{
		Name:     wire.Name,
		Title:    wire.Title,
		Email:    wire.Email,
		Phone:    wire.Phone,
		Location: wire.Location,
		Summary:  wire.Summary,
		Sections: make([]types.Section, 0, len(wire.Sections)),
	}
	for _, ws := range wire.Sections {
		section := types.Section{Title: ws.Title, Bullets: make([]types.Bullet, 0, len(ws.Bullets))}
		for _, wb := range ws.Bullets {
			section.Bullets = append(section.Bullets, types.Bullet{Text: wb.Text})
		}
		resume.Sections = append(resume.Sections, section)
	}

	return PostProcess(resume), nil
}
