package queries

import (
	"context"

	"pollsbot/contexts/polling/poll-engine/ports"
)

// EngineStatus is a coarse health view of the poll store.
type EngineStatus struct {
	ActivePolls int
}

type StatusUseCase struct {
	Polls ports.PollRepository
}

func (uc StatusUseCase) Status(ctx context.Context) (EngineStatus, error) {
	open, err := uc.Polls.ListOpenPolls(ctx)
	if err != nil {
		return EngineStatus{}, err
	}
	return EngineStatus{ActivePolls: len(open)}, nil
}
