package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"puntacana_tours/internal/domain"
)

type seedFile struct {
	Tours []domain.NewTour `yaml:"tours"`
}

// LoadSeedFile reads a YAML document with a top-level "tours" list.
func LoadSeedFile(path string) ([]domain.NewTour, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(b)
}

func ParseSeed(b []byte) ([]domain.NewTour, error) {
	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i := range f.Tours {
		f.Tours[i] = normalizeNewTour(f.Tours[i])
	}
	return f.Tours, nil
}

// SeedService inserts tours through the administrative path.
type SeedService struct {
	catalog *Catalog
}

func NewSeedService(c *Catalog) *SeedService {
	return &SeedService{catalog: c}
}

// SeedTour validates one tour and inserts it. Invalid tours are returned as
// *domain.ValidationError without touching the store.
func (s *SeedService) SeedTour(ctx context.Context, in domain.NewTour) (domain.Tour, error) {
	in = normalizeNewTour(in)
	if err := in.Validate(); err != nil {
		return domain.Tour{}, err
	}
	t, err := s.catalog.CreateTour(ctx, in)
	if err != nil {
		return domain.Tour{}, fmt.Errorf("create tour %q: %w", in.Name, err)
	}
	return t, nil
}


func normalizeNewTour(in domain.NewTour) domain.NewTour {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	if in.Duration != nil {
		d := strings.TrimSpace(*in.Duration)
		if d == "" {
			in.Duration = nil
		} else {
			in.Duration = &d
		}
	}
	in.ImageURLs = compact(in.ImageURLs)
	in.Includes = compact(in.Includes)
	return in
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
