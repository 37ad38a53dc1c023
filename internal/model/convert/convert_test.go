package convert

import (
	"testing"

	"github.com/traveller-vtt/dv/internal/model"
	"github.com/traveller-vtt/dv/pkg/core"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestTokenConversion(t *testing.T) {
	tok := core.Token{
		ID:        "t1",
		PageID:    "p1",
		Name:      "!Beowulf",
		Kind:      core.KindShip,
		Left:      140,
		Top:       210,
		Rotation:  90,
		Bar1Value: "1000,-2000,90",
		Bar2Value: "3,4",
	}

	m := CoreToToken(tok)
	assert.Equal(t, "ship", m.Kind)
	assert.Equal(t, "1000,-2000,90", m.Bar1Value)

	assert.Equal(t, tok, TokenToCore(m))
}

func TestTokenToCore_UnknownKind(t *testing.T) {
	got := TokenToCore(model.Token{ID: "t1", Kind: "banana"})
	assert.Equal(t, core.KindOther, got.Kind)
}

func TestCharacterToCore_Attributes(t *testing.T) {
	c := model.Character{
		ID:   "c1",
		Name: "Sir Robin",
		Attributes: datatypes.JSONMap{
			"alignment": "CG",
			"ac":        float64(17),
			"empty":     nil,
		},
	}

	got := CharacterToCore(c)
	assert.Equal(t, "CG", got.Attr("alignment"))
	assert.Equal(t, "17", got.Attr("ac"))
	assert.Equal(t, "", got.Attr("empty"))
}

func TestCharacterToCore_NoAttributes(t *testing.T) {
	got := CharacterToCore(model.Character{ID: "c1"})
	assert.Nil(t, got.Attributes)
}

func TestCoreToCharacter(t *testing.T) {
	c := core.Character{ID: "c1", ControlledBy: "p1,p2", Attributes: map[string]string{"size": "Medium"}}

	m := CoreToCharacter(c)
	assert.Equal(t, "p1,p2", m.ControlledBy)
	assert.Equal(t, "Medium", m.Attributes["size"])
	assert.Equal(t, c, CharacterToCore(m))
}

func TestOverlayConversion(t *testing.T) {
	p := core.Path{ID: "x", PageID: "p1", Layer: "map", Stroke: "#000000", StrokeWidth: 5, Points: `[["M",0,0]]`, Width: 20, Height: 20, Left: 5, Top: 6}
	assert.Equal(t, p, PathToCore(CoreToPath(p)))

	txt := core.Text{ID: "y", PageID: "p1", Layer: "map", Text: "10km", FontSize: 48, FontFamily: "Arial"}
	assert.Equal(t, txt, TextToCore(CoreToText(txt)))
}

func TestPageAndPlayerConversion(t *testing.T) {
	pg := core.Page{ID: "p1", Name: "Jump point", Width: 25, Height: 15}
	assert.Equal(t, pg, PageToCore(CoreToPage(pg)))

	pl := core.Player{ID: "gm", DisplayName: "Referee", IsGM: true}
	assert.Equal(t, pl, PlayerToCore(CoreToPlayer(pl)))
}
