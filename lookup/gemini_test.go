package lookup

import (
	"context"
	"os"
	"testing"

	"github.com/wfunc/boardvault/logger"
)

func TestMain(m *testing.M) {
	logger.InitDevelopment()
	os.Exit(m.Run())
}

func TestParseDetailsText_PlainJSON(t *testing.T) {
	info, err := ParseDetailsText(`{"description":"Colonos","minPlayers":3,"maxPlayers":4,"playtime":"60-90 min","minAge":10,"mechanics":["Trading"],"emoji":"🏝️","officialExpansions":[{"name":"Seafarers","description":"Barcos"}]}`)
	if err != nil {
		t.Fatalf("ParseDetailsText failed: %v", err)
	}
	if info.MinPlayers != 3 || info.MaxPlayers != 4 || info.Emoji != "🏝️" {
		t.Errorf("Unexpected fields: %+v", info)
	}
	if len(info.Expansions) != 1 || info.Expansions[0].Name != "Seafarers" {
		t.Errorf("Expansions not decoded: %+v", info.Expansions)
	}
}

func TestParseDetailsText_StripsMarkdownWrapper(t *testing.T) {
	text := "Claro, aquí tienes:\n```json\n{\"description\":\"x\",\"minPlayers\":2,\"maxPlayers\":2}\n```\nEspero que sirva."
	info, err := ParseDetailsText(text)
	if err != nil {
		t.Fatalf("ParseDetailsText failed on wrapped JSON: %v", err)
	}
	if info.MinPlayers != 2 {
		t.Errorf("Unexpected fields: %+v", info)
	}
}

func TestParseDetailsText_EmojiFallback(t *testing.T) {
	info, err := ParseDetailsText(`{"description":"x"}`)
	if err != nil {
		t.Fatalf("ParseDetailsText failed: %v", err)
	}
	if info.Emoji != FallbackEmoji {
		t.Errorf("Missing emoji must default to %q, got %q", FallbackEmoji, info.Emoji)
	}
}

func TestParseDetailsText_Failures(t *testing.T) {
	if _, err := ParseDetailsText(""); err != ErrEmptyResponse {
		t.Errorf("Empty text must yield ErrEmptyResponse, got %v", err)
	}
	if _, err := ParseDetailsText("lo siento, no encontré nada"); err != ErrBadResponse {
		t.Errorf("Undecodable text must yield ErrBadResponse, got %v", err)
	}
}

func TestParseExpansionsText(t *testing.T) {
	exps := ParseExpansionsText("Encontré estas:\n[{\"name\":\"Cities\",\"description\":\"Knights\"}]")
	if len(exps) != 1 || exps[0].Name != "Cities" {
		t.Errorf("Expected one expansion, got %+v", exps)
	}
}

func TestParseExpansionsText_DegradesToEmpty(t *testing.T) {
	for _, text := range []string{"", "no hay expansiones", "[broken", "{\"name\":\"obj not array\"}"} {
		if exps := ParseExpansionsText(text); len(exps) != 0 {
			t.Errorf("Text %q must degrade to an empty list, got %+v", text, exps)
		}
	}
}

func TestNewClient_RequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), "", "gemini-2.5-flash"); err != ErrMissingAPIKey {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}
