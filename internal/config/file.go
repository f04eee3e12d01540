package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml"
)

// UserConfig is the on-disk TOML shape of the engine settings. It is
// converted to a Settings before being handed to the engine.
type UserConfig struct {
	World struct {
		Seed               int64 `toml:"seed"`
		GenerationDistance int   `toml:"generation_distance"`
		HeightMultiplier   int   `toml:"height_multiplier"`
		MinHeight          int   `toml:"min_height"`
		MaxHeight          int   `toml:"max_height"`
		BedrockDepth       int   `toml:"bedrock_depth"`
	} `toml:"world"`
	Caves struct {
		Enabled   bool    `toml:"enabled"`
		Threshold float64 `toml:"threshold"`
	} `toml:"caves"`
	Meshing struct {
		MergeBlockMeshes bool `toml:"merge_block_meshes"`
		FaceCulling      bool `toml:"face_culling"`
	} `toml:"meshing"`
	Vegetation struct {
		TreeChance float64 `toml:"tree_chance"`
		BushChance float64 `toml:"bush_chance"`
	} `toml:"vegetation"`
}

// DefaultUserConfig returns the UserConfig matching Default().
func DefaultUserConfig() UserConfig {
	var uc UserConfig
	d := Default()
	uc.World.Seed = 0
	uc.World.GenerationDistance = d.GetGenerationDistance()
	uc.World.HeightMultiplier = d.GetHeightMultiplier()
	uc.World.MinHeight = d.GetMinHeight()
	uc.World.MaxHeight = d.GetMaxHeight()
	uc.World.BedrockDepth = d.GetBedrockDepth()
	uc.Caves.Enabled = d.GetCavesEnabled()
	uc.Caves.Threshold = d.GetCaveThreshold()
	uc.Meshing.MergeBlockMeshes = d.GetMergeBlockMeshes()
	uc.Meshing.FaceCulling = d.GetFaceCulling()
	uc.Vegetation.TreeChance = d.GetTreeChance()
	uc.Vegetation.BushChance = d.GetBushChance()
	return uc
}

// Settings converts the UserConfig into a live Settings instance.
func (uc UserConfig) Settings() *Settings {
	s := Default()
	s.SetGenerationDistance(uc.World.GenerationDistance)
	s.SetHeightMultiplier(uc.World.HeightMultiplier)
	s.SetMinHeight(uc.World.MinHeight)
	s.SetMaxHeight(uc.World.MaxHeight)
	s.SetBedrockDepth(uc.World.BedrockDepth)
	s.SetCavesEnabled(uc.Caves.Enabled)
	s.SetCaveThreshold(uc.Caves.Threshold)
	s.SetMergeBlockMeshes(uc.Meshing.MergeBlockMeshes)
	s.SetFaceCulling(uc.Meshing.FaceCulling)
	s.SetTreeChance(uc.Vegetation.TreeChance)
	s.SetBushChance(uc.Vegetation.BushChance)
	return s
}

// Load reads a UserConfig from the TOML file at path. If the file does
// not exist it is created with defaults, so a first run produces an
// editable settings file.
func Load(path string) (UserConfig, error) {
	uc := DefaultUserConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		out, err := toml.Marshal(uc)
		if err != nil {
			return uc, fmt.Errorf("encode default config: %w", err)
		}
		if err := os.WriteFile(path, out, 0644); err != nil {
			return uc, fmt.Errorf("write default config: %w", err)
		}
		return uc, nil
	}
	if err != nil {
		return uc, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &uc); err != nil {
		return uc, fmt.Errorf("decode config: %w", err)
	}
	return uc, nil
}
