package assets

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ykvlv/health-reminders/internal/domain"
)

//go:embed display_channels.yaml
var displayChannelsYAML []byte

// DisplayChannels decodes the embedded notification categories.
func DisplayChannels() ([]domain.DisplayChannel, error) {
	var doc struct {
		Channels []domain.DisplayChannel `yaml:"channels"`
	}
	if err := yaml.Unmarshal(displayChannelsYAML, &doc); err != nil {
		return nil, fmt.Errorf("decode display channels: %w", err)
	}
	return doc.Channels, nil
}
