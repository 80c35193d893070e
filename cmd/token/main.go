// Command token mints an access token for local and operational use and
// registers its session so the API accepts it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/angelmondragon/listdist/pkg/auth"
	"github.com/angelmondragon/listdist/pkg/auth/session"
	"github.com/angelmondragon/listdist/pkg/config"
	"github.com/angelmondragon/listdist/pkg/enums"
	"github.com/angelmondragon/listdist/pkg/logger"
	"github.com/angelmondragon/listdist/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "token"})

	_ = godotenv.Load()

	roleFlag := flag.String("role", string(enums.RoleAdmin), "role claim: admin|agent")
	userFlag := flag.String("user", "", "user id claim (uuid); random when empty")
	flag.Parse()

	role, err := enums.ParseRole(*roleFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -role: %v\n", err)
		os.Exit(1)
	}

	userID := uuid.New()
	if *userFlag != "" {
		userID, err = uuid.Parse(*userFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -user: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	jti := session.NewAccessID()
	token, err := auth.MintAccessToken(cfg.JWT, time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
		JTI:    jti,
	})
	if err != nil {
		logg.Error(ctx, "failed to mint token", err)
		os.Exit(1)
	}

	if cfg.Redis.Enabled() {
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer client.Close()

		manager, err := session.NewManager(client, auth.TTL(cfg.JWT))
		if err != nil {
			logg.Error(ctx, "failed to create session manager", err)
			os.Exit(1)
		}
		if err := manager.Register(ctx, jti, userID.String()); err != nil {
			logg.Error(ctx, "failed to register session", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "redis not configured: session not registered")
	}

	fmt.Println(token)
}
