package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeDuplicateCheck     = "track:duplicate_check"
	TypeContractSend       = "contract:send"
	TypeDistributionFanout = "distribution:fanout"
)

// DuplicateCheckPayload identifies a freshly submitted track for the
// external-metadata duplicate check.
type DuplicateCheckPayload struct {
	TrackID    uuid.UUID `json:"track_id"`
	Title      string    `json:"title"`
	ArtistName string    `json:"artist_name"`
	ISRCCode   string    `json:"isrc_code"`
	ISWCCode   string    `json:"iswc_code"`
}

func NewDuplicateCheckTask(payload DuplicateCheckPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDuplicateCheck, data), nil
}

// ContractSendPayload triggers the distribution-contract email for a
// user's first submission.
type ContractSendPayload struct {
	UserID      uuid.UUID `json:"user_id"`
	ArtistName  string    `json:"artist_name"`
	AccountType string    `json:"account_type"`
}

func NewContractSendTask(payload ContractSendPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeContractSend, data), nil
}

// DistributionFanoutPayload spreads an approved track across the active
// streaming platforms.
type DistributionFanoutPayload struct {
	TrackID uuid.UUID `json:"track_id"`
}

func NewDistributionFanoutTask(payload DistributionFanoutPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDistributionFanout, data), nil
}
