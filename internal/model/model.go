package model

import (
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Setting{},
	&Page{},
	&Player{},
	&Character{},
	&Token{},
	&Path{},
	&Text{},
}

// SettingPlayerPage is the setting key holding the page players are shown.
const SettingPlayerPage = "playerpageid"

////////////////////////
// CAMPAIGN MODELS
////////////////////////

// Setting is a campaign-wide key/value pair
type Setting struct {
	Key       string `json:"key" gorm:"primaryKey;size:64"`
	Value     string `json:"value" gorm:"size:255"`
	UpdatedAt time.Time
}

func (*Setting) TableName() string {
	return "settings"
}

// Page is a map page, sized in grid squares
type Page struct {
	ID        string `json:"id" gorm:"primaryKey;size:64"`
	Name      string `json:"name" gorm:"size:127"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*Page) TableName() string {
	return "pages"
}

// Player is a campaign participant
type Player struct {
	ID          string `json:"id" gorm:"primaryKey;size:64"`
	DisplayName string `json:"displayName" gorm:"size:127"`
	IsGM        bool   `json:"isGm" gorm:"default:false"`
	CreatedAt   time.Time
}

func (*Player) TableName() string {
	return "players"
}

// Character is a character sheet with free-form attributes
type Character struct {
	ID           string            `json:"id" gorm:"primaryKey;size:64"`
	Name         string            `json:"name" gorm:"size:255"`
	Avatar       string            `json:"avatar" gorm:"size:1024"`
	ControlledBy string            `json:"controlledBy" gorm:"size:1024"`
	Attributes   datatypes.JSONMap `json:"attributes"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (*Character) TableName() string {
	return "characters"
}

////////////////////////
// PAGE OBJECTS
////////////////////////

// Token is a graphic placed on a page
type Token struct {
	ID             string  `json:"id" gorm:"primaryKey;size:64"`
	PageID         string  `json:"pageId" gorm:"index;size:64"`
	Name           string  `json:"name" gorm:"size:255"`
	Kind           string  `json:"kind" gorm:"size:16;default:other"`
	Represents     string  `json:"represents" gorm:"size:64"`
	ImgSrc         string  `json:"imgsrc" gorm:"size:1024"`
	GMNotes        string  `json:"gmnotes"`
	Left           float64 `json:"left"`
	Top            float64 `json:"top"`
	Rotation       float64 `json:"rotation"`
	Bar1Value      string  `json:"bar1Value" gorm:"size:127"`
	Bar1Max        string  `json:"bar1Max" gorm:"size:127"`
	Bar2Value      string  `json:"bar2Value" gorm:"size:127"`
	Bar2Max        string  `json:"bar2Max" gorm:"size:127"`
	Bar3Value      string  `json:"bar3Value" gorm:"size:127"`
	LightRadius    string  `json:"lightRadius" gorm:"size:32"`
	LightDimRadius string  `json:"lightDimRadius" gorm:"size:32"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (*Token) TableName() string {
	return "tokens"
}

// Path is a vector drawing on a page
type Path struct {
	ID          string  `json:"id" gorm:"primaryKey;size:64"`
	PageID      string  `json:"pageId" gorm:"index;size:64"`
	Layer       string  `json:"layer" gorm:"size:32"`
	Fill        string  `json:"fill" gorm:"size:32"`
	Stroke      string  `json:"stroke" gorm:"size:32"`
	StrokeWidth int     `json:"strokeWidth"`
	Rotation    float64 `json:"rotation"`
	Points      string  `json:"points"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Left        float64 `json:"left"`
	Top         float64 `json:"top"`
	CreatedAt   time.Time
}

func (*Path) TableName() string {
	return "paths"
}

// Text is a free text label on a page
type Text struct {
	ID         string  `json:"id" gorm:"primaryKey;size:64"`
	PageID     string  `json:"pageId" gorm:"index;size:64"`
	Layer      string  `json:"layer" gorm:"size:32"`
	Text       string  `json:"text"`
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	FontSize   int     `json:"fontSize"`
	FontFamily string  `json:"fontFamily" gorm:"size:64"`
	CreatedAt  time.Time
}

func (*Text) TableName() string {
	return "texts"
}
