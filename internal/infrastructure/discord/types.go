package discord

import (
	"time"

	"ptalsvc/internal/domain/ptal"
)

const (
	componentTypeActionRow = 1
	componentTypeButton    = 2
	buttonStyleLink        = 5
)

type messageResponse struct {
	ID string `json:"id"`
}

type wireEmbedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type wireEmbedAuthor struct {
	Name string `json:"name"`
}

type wireEmbed struct {
	Title     string           `json:"title,omitempty"`
	Color     int              `json:"color,omitempty"`
	Author    *wireEmbedAuthor `json:"author,omitempty"`
	Fields    []wireEmbedField `json:"fields,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
}

type wireComponent struct {
	Type       int             `json:"type"`
	Style      int             `json:"style,omitempty"`
	Label      string          `json:"label,omitempty"`
	URL        string          `json:"url,omitempty"`
	Components []wireComponent `json:"components,omitempty"`
}

type wirePayload struct {
	Content    string          `json:"content"`
	Embeds     []wireEmbed     `json:"embeds"`
	Components []wireComponent `json:"components,omitempty"`
}

func wireMessage(p ptal.DisplayPayload) wirePayload {
	embed := wireEmbed{
		Title: p.Embed.Title,
		Color: p.Embed.Color,
	}
	if p.Embed.Author != "" {
		embed.Author = &wireEmbedAuthor{Name: p.Embed.Author}
	}
	for _, f := range p.Embed.Fields {
		embed.Fields = append(embed.Fields, wireEmbedField{Name: f.Name, Value: f.Value})
	}
	if !p.Embed.Timestamp.IsZero() {
		embed.Timestamp = p.Embed.Timestamp.UTC().Format(time.RFC3339)
	}

	out := wirePayload{
		Content: p.Content,
		Embeds:  []wireEmbed{embed},
	}

	if len(p.Buttons) > 0 {
		row := wireComponent{Type: componentTypeActionRow}
		for _, b := range p.Buttons {
			row.Components = append(row.Components, wireComponent{
				Type:  componentTypeButton,
				Style: buttonStyleLink,
				Label: b.Label,
				URL:   b.URL,
			})
		}
		out.Components = []wireComponent{row}
	}

	return out
}
