// Package seed loads the built-in reward catalog.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/volunteer-credits/internal/model"
	"github.com/iliyamo/volunteer-credits/internal/repository"
)

//go:embed rewards.yaml
var rewardsYAML []byte

type catalog struct {
	Rewards []model.Reward `yaml:"rewards"`
}

// Rewards parses the embedded catalog.
func Rewards() ([]model.Reward, error) {
	return parse(rewardsYAML)
}

func parse(data []byte) ([]model.Reward, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse reward catalog: %w", err)
	}
	for i, r := range c.Rewards {
		if r.Title == "" || r.Brand == "" || r.CreditsRequired <= 0 {
			return nil, fmt.Errorf("reward catalog entry %d: title, brand and positive creditsRequired are required", i)
		}
	}
	return c.Rewards, nil
}

// Apply inserts every reward whose (brand, title) is not already stored and
// returns how many were inserted.
func Apply(ctx context.Context, repo *repository.RewardRepo, rewards []model.Reward) (int, error) {
	inserted := 0
	for _, r := range rewards {
		exists, err := repo.ExistsByBrandTitle(ctx, r.Brand, r.Title)
		if err != nil {
			return inserted, err
		}
		if exists {
			continue
		}
		if err := repo.Create(ctx, &r); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
