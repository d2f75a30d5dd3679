// models/models.go
package models

// DefaultExpansionDescription fills in for expansions added without one.
const DefaultExpansionDescription = "Sin descripción"

// Expansion 扩展包（归属于单个游戏，无独立ID）
type Expansion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BoardGame 桌游记录模型
type BoardGame struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	MinPlayers  int         `json:"minPlayers"`
	MaxPlayers  int         `json:"maxPlayers"`
	Playtime    string      `json:"playtime"` // e.g. "30-60 min"
	MinAge      int         `json:"minAge"`
	Mechanics   []string    `json:"mechanics"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	Emoji       string      `json:"emoji,omitempty"`
	Rating      float64     `json:"rating,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	Expansions  []Expansion `json:"ownedExpansions"`
	AddedAt     int64       `json:"addedAt"` // unix milliseconds
}

// GameFormData 表单可编辑字段（不含 id/addedAt/ownedExpansions）
type GameFormData struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	MinPlayers  int      `json:"minPlayers"`
	MaxPlayers  int      `json:"maxPlayers"`
	Playtime    string   `json:"playtime"`
	MinAge      int      `json:"minAge"`
	Mechanics   []string `json:"mechanics"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Emoji       string   `json:"emoji,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// AIInfoResponse AI查询返回的游戏信息
type AIInfoResponse struct {
	Description string      `json:"description"`
	MinPlayers  int         `json:"minPlayers"`
	MaxPlayers  int         `json:"maxPlayers"`
	Playtime    string      `json:"playtime"`
	MinAge      int         `json:"minAge"`
	Mechanics   []string    `json:"mechanics"`
	Emoji       string      `json:"emoji"`
	Expansions  []Expansion `json:"officialExpansions"`
}

// Apply copies the editable fields onto an existing record, leaving
// identity and creation time untouched.
func (f GameFormData) Apply(g *BoardGame) {
	g.Name = f.Name
	g.Description = f.Description
	g.MinPlayers = f.MinPlayers
	g.MaxPlayers = f.MaxPlayers
	g.Playtime = f.Playtime
	g.MinAge = f.MinAge
	g.Mechanics = f.Mechanics
	g.ImageURL = f.ImageURL
	g.Emoji = f.Emoji
	g.Rating = f.Rating
	g.Notes = f.Notes
}
