package config

import (
	"log"

	"github.com/Skotchmaster/emotion_diary/pkg/tokens"
)

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustValidTokens(cfg tokens.Config) {
	if err := cfg.Validate(); err != nil {
		log.Fatalf("token config: %v", err)
	}
}
