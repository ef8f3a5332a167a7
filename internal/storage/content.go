package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hmnguyen-dev/tutien-engine/pkg/loot"
	"github.com/hmnguyen-dev/tutien-engine/pkg/scene"
)

// Content table filenames under the data directory.
const (
	ScenesFile     = "scenes.yaml"
	ActivitiesFile = "activities.yaml"
	LootTablesFile = "loot_tables.yaml"
)

// FSContent loads the content tables from a directory at startup and serves
// them from memory.
type FSContent struct {
	scenes     []*scene.Template
	sceneByID  map[string]*scene.Template
	activities []*scene.Activity
	lootByID   map[string]*loot.Table
}

// LoadContent reads and validates every content table under dir. A missing
// file is an error; authored content is required, not optional.
func LoadContent(dir string) (*FSContent, error) {
	c := &FSContent{
		sceneByID: make(map[string]*scene.Template),
		lootByID:  make(map[string]*loot.Table),
	}

	if err := readYAML(filepath.Join(dir, ScenesFile), &c.scenes); err != nil {
		return nil, err
	}
	for _, t := range c.scenes {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", ScenesFile, err)
		}
		if _, dup := c.sceneByID[t.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate scene id %s", ScenesFile, t.ID)
		}
		c.sceneByID[t.ID] = t
	}

	if err := readYAML(filepath.Join(dir, ActivitiesFile), &c.activities); err != nil {
		return nil, err
	}
	for _, a := range c.activities {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", ActivitiesFile, err)
		}
	}

	var tables []*loot.Table
	if err := readYAML(filepath.Join(dir, LootTablesFile), &tables); err != nil {
		return nil, err
	}
	for _, tbl := range tables {
		if err := tbl.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", LootTablesFile, err)
		}
		if _, dup := c.lootByID[tbl.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate loot table id %s", LootTablesFile, tbl.ID)
		}
		c.lootByID[tbl.ID] = tbl
	}

	// Scenes may reference loot tables; a dangling reference is a content
	// bug caught here rather than mid-turn.
	for _, t := range c.scenes {
		if t.LootTableID != "" && c.lootByID[t.LootTableID] == nil {
			return nil, fmt.Errorf("scene %s references unknown loot table %s", t.ID, t.LootTableID)
		}
	}
	return c, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *FSContent) ListScenes() []*scene.Template { return c.scenes }

func (c *FSContent) GetScene(id string) *scene.Template { return c.sceneByID[id] }

func (c *FSContent) ListActivities() []*scene.Activity { return c.activities }

func (c *FSContent) GetLootTable(id string) *loot.Table { return c.lootByID[id] }
