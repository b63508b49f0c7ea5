package dto

import "time"

type JobDTO struct {
	Name    string     `json:"name"`
	Spec    string     `json:"spec"`
	Running bool       `json:"running"`
	PrevRun *time.Time `json:"prev_run"`
	NextRun *time.Time `json:"next_run"`
}

// JobRunDTO 手动触发任务的执行结果
type JobRunDTO struct {
	Name      string      `json:"name"`
	StartedAt time.Time   `json:"started_at"`
	Duration  string      `json:"duration"`
	Result    interface{} `json:"result"`
}
