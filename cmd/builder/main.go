package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/dnd-character-engine/internal/config"
	domain "github.com/KirkDiggler/dnd-character-engine/internal/domain/character"
	"github.com/KirkDiggler/dnd-character-engine/internal/repositories/characterstates"
	"github.com/KirkDiggler/dnd-character-engine/internal/rules"
	charsvc "github.com/KirkDiggler/dnd-character-engine/internal/services/character"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var (
		owner    = flag.String("owner", "", "owner to start or list builds for")
		id       = flag.String("id", "", "build ID to operate on")
		name     = flag.String("name", "", "character name for a new build")
		key      = flag.String("key", "", "choice key to apply")
		value    = flag.String("value", "", "choice value; comma-separated for multi-selections")
		list     = flag.Bool("list", false, "list the owner's builds")
		remove   = flag.Bool("delete", false, "delete the build")
		roll     = flag.Bool("roll", false, "roll a set of ability scores")
		rulesDir = flag.String("rules", cfg.Rules.Dir, "rule document directory")
	)
	flag.Parse()

	ruleRepo, err := rules.NewFS(*rulesDir)
	if err != nil {
		log.Fatalf("Failed to load rules from %s: %v", *rulesDir, err)
	}

	var states characterstates.Repository
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		states = characterstates.NewRedisRepository(&characterstates.RedisRepoConfig{Client: client})
		log.Printf("Using Redis at %s", cfg.Redis.Addr)
	} else {
		states = characterstates.NewInMemoryRepository()
		log.Println("REDIS_ADDR not set, builds will not persist")
	}

	svc, err := charsvc.NewService(&charsvc.ServiceConfig{
		Rules:  ruleRepo,
		States: states,
	})
	if err != nil {
		log.Fatalf("Failed to create character service: %v", err)
	}

	ctx := context.Background()

	switch {
	case *roll:
		output, err := svc.RollAbilities(ctx)
		if err != nil {
			log.Fatalf("Failed to roll abilities: %v", err)
		}
		for i, result := range output.Rolls {
			fmt.Printf("%v -> %d\n", result.Rolls, output.Scores[i])
		}

	case *list:
		builds, err := svc.ListBuilds(ctx, *owner)
		if err != nil {
			log.Fatalf("Failed to list builds: %v", err)
		}
		for _, build := range builds {
			fmt.Printf("%s  %s (%s %s, level %d)\n", build.ID, build.Name, build.Species, build.Class, build.Level)
		}

	case *remove:
		if err := svc.DeleteBuild(ctx, *id); err != nil {
			log.Fatalf("Failed to delete build: %v", err)
		}
		fmt.Println("deleted", *id)

	case *id == "":
		build, err := svc.StartBuild(ctx, &charsvc.StartBuildInput{Owner: *owner, Name: *name})
		if err != nil {
			log.Fatalf("Failed to start build: %v", err)
		}
		printState(build)

	case *key != "":
		build, err := svc.ApplyChoice(ctx, &charsvc.ApplyChoiceInput{
			ID:    *id,
			Key:   *key,
			Value: parseValue(*value),
		})
		if err != nil {
			log.Fatalf("Failed to apply choice: %v", err)
		}
		printState(build)

	default:
		build, err := svc.GetBuild(ctx, *id)
		if err != nil {
			log.Fatalf("Failed to get build: %v", err)
		}
		printState(build)
	}
}

// parseValue reads a flag value into a choice value; commas mark a
// multi-selection
func parseValue(raw string) domain.ChoiceValue {
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return domain.MultiValue(parts...)
	}
	return domain.SingleValue(raw)
}

func printState(state *domain.State) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(state); err != nil {
		log.Fatalf("Failed to render state: %v", err)
	}
}
