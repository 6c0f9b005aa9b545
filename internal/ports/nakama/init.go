package nakama

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/heroiclabs/nakama-common/runtime"

	"doudizhu/internal/config"
)

// InitModule wires RPCs and the room match handler for the Nakama runtime,
// then creates the fixed room pool.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	cfg, err := loadConfig(ctx, logger)
	if err != nil {
		return err
	}

	handler := newMatchHandler(cfg)
	if err := initializer.RegisterMatch(MatchNameRoom, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return handler, nil
	}); err != nil {
		return err
	}
	if err := RegisterRPCs(initializer, cfg); err != nil {
		return err
	}

	for i := 1; i <= cfg.RoomCount; i++ {
		roomID := strconv.Itoa(i)
		matchID, err := nk.MatchCreate(ctx, MatchNameRoom, map[string]interface{}{
			MatchLabelKey_RoomID: roomID,
			"fixed":              true,
		})
		if err != nil {
			return fmt.Errorf("create room %s: %w", roomID, err)
		}
		logger.Debug("InitModule: room %s is match %s", roomID, matchID)
	}

	logger.Info("Doudizhu Go module loaded with %d rooms.", cfg.RoomCount)
	return nil
}

func loadConfig(ctx context.Context, logger runtime.Logger) (config.GameConfig, error) {
	if err := config.LoadGameConfig(ConfigPath); err != nil {
		logger.Warn("InitModule: Could not load game config: %v", err)
	}
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg, err := config.ApplyEnv(config.GetGameConfig(), EnvPrefix, env)
	if err != nil {
		return config.GameConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.GameConfig{}, err
	}
	return cfg, nil
}
