package repository

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"taskboard/internal/model"
)

//go:embed seed/tasks.json
var seedJSON []byte

// SeedTasks returns the demo tasks bundled with the binary.
func SeedTasks() ([]model.Task, error) {
	var tasks []model.Task
	if err := json.Unmarshal(seedJSON, &tasks); err != nil {
		return nil, fmt.Errorf("decode seed tasks: %w", err)
	}
	return tasks, nil
}
