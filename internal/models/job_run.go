package models

import "time"

// JobRun marks that a scheduled job already ran for a given key (usually the
// date). The unique index lets several server instances share one schedule:
// the first insert wins, the rest skip the run.
type JobRun struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	JobName   string    `gorm:"uniqueIndex:idx_job_run_key;size:100;not null" json:"job_name"`
	RunKey    string    `gorm:"uniqueIndex:idx_job_run_key;size:100;not null" json:"run_key"`
	Host      string    `gorm:"size:100" json:"host"`
	StartedAt time.Time `json:"started_at"`
}

func (JobRun) TableName() string { return "job_runs" }
