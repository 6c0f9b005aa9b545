package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// GameConfig holds server settings shared by both entrypoints.
type GameConfig struct {
	RoomCount          int    `json:"room_count"`
	AllowAdhocRooms    bool   `json:"allow_adhoc_rooms"`
	Jokers             bool   `json:"jokers"`
	TurnTimeoutSeconds int    `json:"turn_timeout_seconds"`
	TimeoutPolicy      string `json:"timeout_policy"`
	EndGameOnDeparture bool   `json:"end_game_on_departure"`

	HTTPAddr        string `json:"http_addr"`
	TokenSecret     string `json:"token_secret"`
	TokenIssuer     string `json:"token_issuer"`
	TokenTTLSeconds int    `json:"token_ttl_seconds"`

	NatsURL           string `json:"nats_url"`
	NatsSubjectPrefix string `json:"nats_subject_prefix"`
}

// Default returns the settings used when no file or override is given.
func Default() GameConfig {
	return GameConfig{
		RoomCount:          5,
		Jokers:             true,
		TurnTimeoutSeconds: 30,
		TimeoutPolicy:      "autoplay",
		EndGameOnDeparture: true,
		HTTPAddr:           ":3000",
		TokenIssuer:        "doudizhu",
		TokenTTLSeconds:    86400,
		NatsSubjectPrefix:  "doudizhu",
	}
}

// TurnTimeout is the per-turn deadline, zero when disabled.
func (c GameConfig) TurnTimeout() time.Duration {
	if c.TurnTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TurnTimeoutSeconds) * time.Second
}

func (c GameConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLSeconds) * time.Second
}

// Validate rejects settings the server cannot run with.
func (c GameConfig) Validate() error {
	if c.RoomCount < 0 {
		return fmt.Errorf("room_count must not be negative: %d", c.RoomCount)
	}
	if c.RoomCount == 0 && !c.AllowAdhocRooms {
		return fmt.Errorf("room_count is 0 and ad hoc rooms are disabled")
	}
	switch c.TimeoutPolicy {
	case "pass", "autoplay":
	default:
		return fmt.Errorf("unknown timeout_policy: %q", c.TimeoutPolicy)
	}
	return nil
}

// Parse decodes a JSON document over the defaults.
func Parse(data []byte) (GameConfig, error) {
	c := Default()
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	return c, nil
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path once. A
// missing file leaves the defaults in place.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		c := Default()
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		default:
			if c, err = Parse(data); err != nil {
				loadErr = err
				return
			}
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or the defaults when
// nothing was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Default()
	}
	return *cfg
}

// ApplyEnv overrides fields from a key/value map. Keys are the JSON field
// names with prefix prepended, matched case-insensitively, e.g. DDZ_ROOM_COUNT
// or doudizhu_room_count.
func ApplyEnv(c GameConfig, prefix string, env map[string]string) (GameConfig, error) {
	lookup := make(map[string]string, len(env))
	for k, v := range env {
		lookup[strings.ToLower(k)] = v
	}
	get := func(name string) (string, bool) {
		v, ok := lookup[strings.ToLower(prefix)+name]
		return v, ok
	}

	var err error
	setInt := func(name string, dst *int) {
		if v, ok := get(name); ok && err == nil {
			n, convErr := strconv.Atoi(v)
			if convErr != nil {
				err = fmt.Errorf("%s%s: %w", prefix, name, convErr)
				return
			}
			*dst = n
		}
	}
	setBool := func(name string, dst *bool) {
		if v, ok := get(name); ok && err == nil {
			b, convErr := strconv.ParseBool(v)
			if convErr != nil {
				err = fmt.Errorf("%s%s: %w", prefix, name, convErr)
				return
			}
			*dst = b
		}
	}
	setString := func(name string, dst *string) {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	setInt("room_count", &c.RoomCount)
	setBool("allow_adhoc_rooms", &c.AllowAdhocRooms)
	setBool("jokers", &c.Jokers)
	setInt("turn_timeout_seconds", &c.TurnTimeoutSeconds)
	setString("timeout_policy", &c.TimeoutPolicy)
	setBool("end_game_on_departure", &c.EndGameOnDeparture)
	setString("http_addr", &c.HTTPAddr)
	setString("token_secret", &c.TokenSecret)
	setString("token_issuer", &c.TokenIssuer)
	setInt("token_ttl_seconds", &c.TokenTTLSeconds)
	setString("nats_url", &c.NatsURL)
	setString("nats_subject_prefix", &c.NatsSubjectPrefix)
	if err != nil {
		return GameConfig{}, err
	}
	return c, nil
}

// Environ returns the process environment as a map for ApplyEnv.
func Environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}
