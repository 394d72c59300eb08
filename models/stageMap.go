package models

import (
	"encoding/json"
	"log"
	"os"
	"strings"
	"sync"
)

// defaultStageMap maps Trello list ids to canonical stage slugs for the
// production board. Lists the shop does not track (e.g. "Ideas", archived
// columns) are deliberately absent: moves into them are acked and ignored.
var defaultStageMap = map[string]string{
	"5f1a2b3c4d5e6f7a8b9c0d01": StagePending,
	"5f1a2b3c4d5e6f7a8b9c0d02": StageDesign,
	"5f1a2b3c4d5e6f7a8b9c0d03": StagePrinting,
	"5f1a2b3c4d5e6f7a8b9c0d04": StageHeatPressing,
	"5f1a2b3c4d5e6f7a8b9c0d05": StagePacking,
	"5f1a2b3c4d5e6f7a8b9c0d06": StageDelivered,
}

var (
	stageMapOnce sync.Once
	stageMap     map[string]string
)

// loadStageMap builds the immutable list-id -> stage table once at first use.
// STAGE_MAP_JSON (a JSON object of list id -> slug) replaces the defaults
// wholesale so each deployment binds to its own board.
func loadStageMap() {
	raw := strings.TrimSpace(os.Getenv("STAGE_MAP_JSON"))
	if raw == "" {
		stageMap = defaultStageMap
		return
	}
	parsed := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Printf("invalid STAGE_MAP_JSON, falling back to defaults: %v", err)
		stageMap = defaultStageMap
		return
	}
	stageMap = parsed
}

// ResolveStage maps an external list id to its canonical stage slug.
// ok is false for lists the system does not track.
func ResolveStage(listId string) (string, bool) {
	stageMapOnce.Do(loadStageMap)
	stage, ok := stageMap[listId]
	return stage, ok
}
