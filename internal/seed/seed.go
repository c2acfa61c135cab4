// Package seed loads reference data (roles, categories, system tags and the
// emotion knowledge base) from YAML into the database.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Skotchmaster/emotion_diary/internal/models"
	"github.com/Skotchmaster/emotion_diary/internal/repo"
	"github.com/Skotchmaster/emotion_diary/pkg/roles"
)

type File struct {
	Roles       []string                  `yaml:"roles"`
	Permissions map[string][]string       `yaml:"permissions"`
	Categories  []string                  `yaml:"categories"`
	SystemTags  []string                  `yaml:"system_tags"`
	Knowledge   []models.EmotionKnowledge `yaml:"knowledge"`
}

type Summary struct {
	Roles       int
	Permissions int
	Categories  int
	SystemTags  int
	Knowledge   int
}

func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Decode(fh)
}

func (f *File) validate() error {
	for _, r := range f.Roles {
		if !roles.Known(roles.Normalize(r)) {
			return fmt.Errorf("seed: unknown role %q", r)
		}
	}
	for r := range f.Permissions {
		if !roles.Known(roles.Normalize(r)) {
			return fmt.Errorf("seed: permissions for unknown role %q", r)
		}
	}
	for i, k := range f.Knowledge {
		if strings.TrimSpace(k.Category) == "" {
			return fmt.Errorf("seed: knowledge[%d]: category is empty", i)
		}
		if k.Intensity < 0 || k.Intensity > 1 {
			return fmt.Errorf("seed: knowledge[%d]: intensity %v outside [0, 1]", i, k.Intensity)
		}
	}
	return nil
}

// Apply writes f idempotently. Running it twice leaves the database as
// running it once.
func Apply(ctx context.Context, r *repo.GormRepo, f *File) (Summary, error) {
	var s Summary

	rs := make([]roles.Role, 0, len(f.Roles))
	for _, name := range f.Roles {
		rs = append(rs, roles.Normalize(name))
	}
	if len(rs) > 0 {
		rows, err := r.EnsureRoles(ctx, rs...)
		if err != nil {
			return s, fmt.Errorf("roles: %w", err)
		}
		s.Roles = len(rows)
	}

	for role, perms := range f.Permissions {
		for _, p := range perms {
			if err := r.GrantPermission(ctx, roles.Normalize(role), models.Permission{Name: p}); err != nil {
				return s, fmt.Errorf("permission %q: %w", p, err)
			}
			s.Permissions++
		}
	}

	if err := r.EnsureCategories(ctx, f.Categories...); err != nil {
		return s, fmt.Errorf("categories: %w", err)
	}
	s.Categories = len(f.Categories)

	for _, name := range f.SystemTags {
		_, err := r.CreateTag(ctx, &models.Tag{Name: strings.TrimSpace(name), Type: models.TagTypeSystem})
		if err != nil && !errors.Is(err, repo.ErrAlreadyExists) {
			return s, fmt.Errorf("tag %q: %w", name, err)
		}
		s.SystemTags++
	}

	for i := range f.Knowledge {
		k := f.Knowledge[i]
		if err := r.UpsertKnowledge(ctx, &k); err != nil {
			return s, fmt.Errorf("knowledge %q: %w", k.Category, err)
		}
		s.Knowledge++
	}
	return s, nil
}
