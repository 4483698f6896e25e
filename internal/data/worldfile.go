package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WorldFile is the on-disk shape of the map: a sparse list of tiles with
// their ground, items and zone flags. Coordinates are absolute.
type WorldFile struct {
	Name  string    `yaml:"name"`
	Tiles []TileDef `yaml:"tiles"`
}

// TileDef describes one tile.
type TileDef struct {
	X      uint16    `yaml:"x"`
	Y      uint16    `yaml:"y"`
	Z      uint8     `yaml:"z"`
	Ground uint16    `yaml:"ground"`
	Zones  []string  `yaml:"zones"`
	Items  []ItemDef `yaml:"items"`
}

// ItemDef describes one item instance placed at load.
type ItemDef struct {
	ID       uint16 `yaml:"id"`
	Count    uint32 `yaml:"count"`
	SubType  uint16 `yaml:"sub_type"`
	ActionID uint16 `yaml:"action_id"`
	UniqueID uint16 `yaml:"unique_id"`
	Text     string `yaml:"text"`
	// Teleport exit, when the item type is a teleporter.
	DestX uint16 `yaml:"dest_x"`
	DestY uint16 `yaml:"dest_y"`
	DestZ uint8  `yaml:"dest_z"`
	// House door number, when the item type is a door.
	DoorID uint8 `yaml:"door_id"`
}

// LoadWorldFile parses a world map file.
func LoadWorldFile(path string) (*WorldFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world %s: %w", path, err)
	}
	var wf WorldFile
	if err := yaml.Unmarshal(raw, &wf); err != nil {
		return nil, fmt.Errorf("parse world %s: %w", path, err)
	}
	return &wf, nil
}

// TownDef describes one town.
type TownDef struct {
	ID     uint32 `yaml:"id"`
	Name   string `yaml:"name"`
	Temple struct {
		X uint16 `yaml:"x"`
		Y uint16 `yaml:"y"`
		Z uint8  `yaml:"z"`
	} `yaml:"temple"`
}

type townsFile struct {
	Towns []TownDef `yaml:"towns"`
}

// LoadTowns parses the town list.
func LoadTowns(path string) ([]TownDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read towns %s: %w", path, err)
	}
	var file townsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse towns %s: %w", path, err)
	}
	return file.Towns, nil
}

// HouseDef describes one house: which tiles belong to it and where its
// entry is. Doors and beds are regular items on those tiles; the world
// loader links them to the house.
type HouseDef struct {
	ID     uint32 `yaml:"id"`
	Name   string `yaml:"name"`
	TownID uint32 `yaml:"town"`
	Owner  uint32 `yaml:"owner"`
	Rent   uint32 `yaml:"rent"`
	Entry  struct {
		X uint16 `yaml:"x"`
		Y uint16 `yaml:"y"`
		Z uint8  `yaml:"z"`
	} `yaml:"entry"`
	Tiles []struct {
		X uint16 `yaml:"x"`
		Y uint16 `yaml:"y"`
		Z uint8  `yaml:"z"`
	} `yaml:"tiles"`
}

type housesFile struct {
	Houses []HouseDef `yaml:"houses"`
}

// LoadHouses parses the house list.
func LoadHouses(path string) ([]HouseDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read houses %s: %w", path, err)
	}
	var file housesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse houses %s: %w", path, err)
	}
	return file.Houses, nil
}
