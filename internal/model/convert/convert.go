// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"fmt"

	"github.com/traveller-vtt/dv/internal/model"
	"github.com/traveller-vtt/dv/pkg/core"
	"gorm.io/datatypes"
)

// TokenToCore converts a GORM model.Token to a core.Token
func TokenToCore(t model.Token) core.Token {
	return core.Token{
		ID:             t.ID,
		PageID:         t.PageID,
		Name:           t.Name,
		Kind:           core.ParseKind(t.Kind),
		Represents:     t.Represents,
		ImgSrc:         t.ImgSrc,
		GMNotes:        t.GMNotes,
		Left:           t.Left,
		Top:            t.Top,
		Rotation:       t.Rotation,
		Bar1Value:      t.Bar1Value,
		Bar1Max:        t.Bar1Max,
		Bar2Value:      t.Bar2Value,
		Bar2Max:        t.Bar2Max,
		Bar3Value:      t.Bar3Value,
		LightRadius:    t.LightRadius,
		LightDimRadius: t.LightDimRadius,
	}
}

// CoreToToken converts a core.Token to a GORM model.Token
func CoreToToken(t core.Token) model.Token {
	return model.Token{
		ID:             t.ID,
		PageID:         t.PageID,
		Name:           t.Name,
		Kind:           t.Kind.String(),
		Represents:     t.Represents,
		ImgSrc:         t.ImgSrc,
		GMNotes:        t.GMNotes,
		Left:           t.Left,
		Top:            t.Top,
		Rotation:       t.Rotation,
		Bar1Value:      t.Bar1Value,
		Bar1Max:        t.Bar1Max,
		Bar2Value:      t.Bar2Value,
		Bar2Max:        t.Bar2Max,
		Bar3Value:      t.Bar3Value,
		LightRadius:    t.LightRadius,
		LightDimRadius: t.LightDimRadius,
	}
}

// PageToCore converts a GORM model.Page to a core.Page
func PageToCore(p model.Page) core.Page {
	return core.Page{ID: p.ID, Name: p.Name, Width: p.Width, Height: p.Height}
}

// CoreToPage converts a core.Page to a GORM model.Page
func CoreToPage(p core.Page) model.Page {
	return model.Page{ID: p.ID, Name: p.Name, Width: p.Width, Height: p.Height}
}

// PlayerToCore converts a GORM model.Player to a core.Player
func PlayerToCore(p model.Player) core.Player {
	return core.Player{ID: p.ID, DisplayName: p.DisplayName, IsGM: p.IsGM}
}

// CoreToPlayer converts a core.Player to a GORM model.Player
func CoreToPlayer(p core.Player) model.Player {
	return model.Player{ID: p.ID, DisplayName: p.DisplayName, IsGM: p.IsGM}
}

// CharacterToCore converts a GORM model.Character to a core.Character.
// Non-string attribute values are formatted with fmt.
func CharacterToCore(c model.Character) core.Character {
	var attrs map[string]string
	if len(c.Attributes) > 0 {
		attrs = make(map[string]string, len(c.Attributes))
		for k, v := range c.Attributes {
			switch val := v.(type) {
			case string:
				attrs[k] = val
			case nil:
				attrs[k] = ""
			default:
				attrs[k] = fmt.Sprint(val)
			}
		}
	}
	return core.Character{
		ID:           c.ID,
		Name:         c.Name,
		Avatar:       c.Avatar,
		ControlledBy: c.ControlledBy,
		Attributes:   attrs,
	}
}

// CoreToCharacter converts a core.Character to a GORM model.Character
func CoreToCharacter(c core.Character) model.Character {
	attrs := datatypes.JSONMap{}
	for k, v := range c.Attributes {
		attrs[k] = v
	}
	return model.Character{
		ID:           c.ID,
		Name:         c.Name,
		Avatar:       c.Avatar,
		ControlledBy: c.ControlledBy,
		Attributes:   attrs,
	}
}

// PathToCore converts a GORM model.Path to a core.Path
func PathToCore(p model.Path) core.Path {
	return core.Path{
		ID:          p.ID,
		PageID:      p.PageID,
		Layer:       p.Layer,
		Fill:        p.Fill,
		Stroke:      p.Stroke,
		StrokeWidth: p.StrokeWidth,
		Rotation:    p.Rotation,
		Points:      p.Points,
		Width:       p.Width,
		Height:      p.Height,
		Left:        p.Left,
		Top:         p.Top,
	}
}

// CoreToPath converts a core.Path to a GORM model.Path
func CoreToPath(p core.Path) model.Path {
	return model.Path{
		ID:          p.ID,
		PageID:      p.PageID,
		Layer:       p.Layer,
		Fill:        p.Fill,
		Stroke:      p.Stroke,
		StrokeWidth: p.StrokeWidth,
		Rotation:    p.Rotation,
		Points:      p.Points,
		Width:       p.Width,
		Height:      p.Height,
		Left:        p.Left,
		Top:         p.Top,
	}
}

// TextToCore converts a GORM model.Text to a core.Text
func TextToCore(t model.Text) core.Text {
	return core.Text{
		ID:         t.ID,
		PageID:     t.PageID,
		Layer:      t.Layer,
		Text:       t.Text,
		Left:       t.Left,
		Top:        t.Top,
		FontSize:   t.FontSize,
		FontFamily: t.FontFamily,
	}
}

// CoreToText converts a core.Text to a GORM model.Text
func CoreToText(t core.Text) model.Text {
	return model.Text{
		ID:         t.ID,
		PageID:     t.PageID,
		Layer:      t.Layer,
		Text:       t.Text,
		Left:       t.Left,
		Top:        t.Top,
		FontSize:   t.FontSize,
		FontFamily: t.FontFamily,
	}
}
