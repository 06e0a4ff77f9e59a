package server

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin creates the authority account on first boot. Idempotent:
// does nothing once any admin exists. Without a password no account is
// created and every privileged procedure stays unreachable.
func SeedAdmin(ctx context.Context, logger *slog.Logger, store Store, email, password string) error {
	exists, err := store.HasAdmin(ctx)
	if err != nil {
		return err
	}
	if exists || password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := store.CreateAdmin(ctx, strings.ToLower(email), string(hash)); err != nil {
		return err
	}

	logger.Info("admin account created", "email", email)
	return nil
}

// SeedDemoQuestions loads a playable question set when the content
// table is empty.
func SeedDemoQuestions(ctx context.Context, logger *slog.Logger, store Store) error {
	existing, err := store.ListQuestions(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	demo := []Question{
		{ThemeTag: "capitals", AnswerKey: "PARIS", LetterPool: "PARISTOLMEN", ImageRefs: []string{}},
		{ThemeTag: "capitals", AnswerKey: "MADRID", LetterPool: "MADRIDUZOEK", ImageRefs: []string{}},
		{ThemeTag: "capitals", AnswerKey: "BERLIN", LetterPool: "BERLINSHTAK", ImageRefs: []string{}},
		{ThemeTag: "rivers", AnswerKey: "RHONE", LetterPool: "RHONEVALTIS", ImageRefs: []string{}},
		{ThemeTag: "rivers", AnswerKey: "LOIRE", LetterPool: "LOIRESBANTU", ImageRefs: []string{}},
		{ThemeTag: "mountains", AnswerKey: "ALPES", LetterPool: "ALPESORMIND", ImageRefs: []string{}},
	}
	for _, q := range demo {
		if _, err := store.CreateQuestion(ctx, q); err != nil {
			return err
		}
	}

	logger.Info("demo questions seeded", "count", len(demo))
	return nil
}
