package scheduler

import (
	"encoding/json"

	"workmarket_sdr/internal/crm"

	"github.com/hibiken/asynq"
)

const TaskLeadSync = "crm.lead.sync"

func NewLeadSyncTask(card crm.LeadCard) (*asynq.Task, error) {
	data, err := json.Marshal(card)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadSync, data), nil
}

func ParseLeadSyncPayload(task *asynq.Task) (crm.LeadCard, error) {
	var card crm.LeadCard
	if err := json.Unmarshal(task.Payload(), &card); err != nil {
		return crm.LeadCard{}, err
	}
	return card, nil
}
