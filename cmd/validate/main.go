package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hmnguyen-dev/tutien-engine/pkg/loot"
	"github.com/hmnguyen-dev/tutien-engine/pkg/scene"
)

func main() {
	dir := "./data"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	validator := &ContentValidator{}
	if err := validator.validateDir(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Content tables are valid!")
}

type ContentValidator struct {
	errors []string
}

func (v *ContentValidator) validateDir(dir string) error {
	fmt.Printf("Validating %s...\n", dir)
	v.errors = nil

	var scenes []*scene.Template
	if err := readYAML(filepath.Join(dir, "scenes.yaml"), &scenes); err != nil {
		return err
	}
	var activities []*scene.Activity
	if err := readYAML(filepath.Join(dir, "activities.yaml"), &activities); err != nil {
		return err
	}
	var tables []*loot.Table
	if err := readYAML(filepath.Join(dir, "loot_tables.yaml"), &tables); err != nil {
		return err
	}

	tableIDs := make(map[string]bool, len(tables))
	for _, tbl := range tables {
		if err := tbl.Validate(); err != nil {
			v.addError(err.Error())
			continue
		}
		v.validateIDFormat("loot table ID", tbl.ID)
		if tableIDs[tbl.ID] {
			v.addError(fmt.Sprintf("duplicate loot table ID '%s'", tbl.ID))
		}
		tableIDs[tbl.ID] = true
		for _, e := range tbl.Entries {
			v.validateIDFormat(fmt.Sprintf("item ID in loot table %s", tbl.ID), e.ID)
		}
	}

	sceneIDs := make(map[string]bool, len(scenes))
	for _, t := range scenes {
		if err := t.Validate(); err != nil {
			v.addError(err.Error())
			continue
		}
		v.validateIDFormat("scene ID", t.ID)
		if sceneIDs[t.ID] {
			v.addError(fmt.Sprintf("duplicate scene ID '%s'", t.ID))
		}
		sceneIDs[t.ID] = true
		for _, tag := range t.Tags {
			v.validateIDFormat(fmt.Sprintf("tag in scene %s", t.ID), tag)
		}
		if t.LootTableID != "" && !tableIDs[t.LootTableID] {
			v.addError(fmt.Sprintf("scene '%s' references unknown loot table '%s'", t.ID, t.LootTableID))
		}
	}

	activityIDs := make(map[string]bool, len(activities))
	for _, a := range activities {
		if err := a.Validate(); err != nil {
			v.addError(err.Error())
			continue
		}
		v.validateIDFormat("activity ID", a.ID)
		if activityIDs[a.ID] {
			v.addError(fmt.Sprintf("duplicate activity ID '%s'", a.ID))
		}
		activityIDs[a.ID] = true
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", dir, strings.Join(v.errors, "\n"))
	}

	fmt.Printf("  %d scenes, %d activities, %d loot tables\n", len(scenes), len(activities), len(tables))
	return nil
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

func (v *ContentValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}
	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *ContentValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
