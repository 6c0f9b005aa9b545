package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.RoomCount != 5 || !c.Jokers || !c.EndGameOnDeparture || c.TimeoutPolicy != "autoplay" {
		t.Fatalf("Default() = %+v", c)
	}
	if c.TurnTimeout() != 30*time.Second {
		t.Fatalf("TurnTimeout() = %v, want 30s", c.TurnTimeout())
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestParseKeepsDefaultsForMissingFields(t *testing.T) {
	c, err := Parse([]byte(`{"room_count": 8, "jokers": false}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.RoomCount != 8 || c.Jokers {
		t.Fatalf("parsed fields not applied: %+v", c)
	}
	if c.TurnTimeoutSeconds != 30 || c.HTTPAddr != ":3000" {
		t.Fatalf("defaults lost: %+v", c)
	}
	if _, err := Parse([]byte(`{`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		env     map[string]string
		check   func(GameConfig) bool
		wantErr bool
	}{
		{
			name:   "process style keys",
			prefix: "DDZ_",
			env:    map[string]string{"DDZ_ROOM_COUNT": "3", "DDZ_TIMEOUT_POLICY": "pass", "PATH": "/bin"},
			check:  func(c GameConfig) bool { return c.RoomCount == 3 && c.TimeoutPolicy == "pass" },
		},
		{
			name:   "nakama style keys",
			prefix: "doudizhu_",
			env:    map[string]string{"doudizhu_end_game_on_departure": "false", "doudizhu_turn_timeout_seconds": "0"},
			check:  func(c GameConfig) bool { return !c.EndGameOnDeparture && c.TurnTimeout() == 0 },
		},
		{
			name:    "bad integer",
			prefix:  "DDZ_",
			env:     map[string]string{"DDZ_ROOM_COUNT": "many"},
			wantErr: true,
		},
		{
			name:    "bad bool",
			prefix:  "DDZ_",
			env:     map[string]string{"DDZ_JOKERS": "sometimes"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ApplyEnv(Default(), tt.prefix, tt.env)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnv() error = %v", err)
			}
			if !tt.check(c) {
				t.Fatalf("ApplyEnv() = %+v", c)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	c := Default()
	c.TimeoutPolicy = "forfeit"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for unknown policy")
	}

	c = Default()
	c.RoomCount = 0
	if err := c.Validate(); err == nil {
		t.Fatal("expected error when no room can exist")
	}
	c.AllowAdhocRooms = true
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadGameConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server_config.json")
	if err := os.WriteFile(path, []byte(`{"room_count": 2}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := LoadGameConfig(path); err != nil {
		t.Fatalf("LoadGameConfig() error = %v", err)
	}
	if got := GetGameConfig().RoomCount; got != 2 {
		t.Fatalf("RoomCount = %d, want 2", got)
	}
}
