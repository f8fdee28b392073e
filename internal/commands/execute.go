package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Schedule   func(ScheduleArgs) (Result, error)
	Unschedule func(UnscheduleArgs) (Result, error)
	Plan       func(PlanArgs) (Result, error)
	Drop       func(DropArgs) (Result, error)
	Complete   func(CompleteArgs) (Result, error)
	Prioritize func(PrioritizeArgs) (Result, error)
	Snooze     func(SnoozeArgs) (Result, error)
	Show       func(ShowArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeSchedule:
		if handlers.Schedule == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "schedule handler not configured"}
		}
		return handlers.Schedule(*cmd.Schedule)
	case TypeUnschedule:
		if handlers.Unschedule == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "unschedule handler not configured"}
		}
		return handlers.Unschedule(*cmd.Unschedule)
	case TypePlan:
		if handlers.Plan == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "plan handler not configured"}
		}
		return handlers.Plan(*cmd.Plan)
	case TypeDrop:
		if handlers.Drop == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "drop handler not configured"}
		}
		return handlers.Drop(*cmd.Drop)
	case TypeComplete:
		if handlers.Complete == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "complete handler not configured"}
		}
		return handlers.Complete(*cmd.Complete)
	case TypePrioritize:
		if handlers.Prioritize == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "prioritize handler not configured"}
		}
		return handlers.Prioritize(*cmd.Prioritize)
	case TypeSnooze:
		if handlers.Snooze == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "snooze handler not configured"}
		}
		return handlers.Snooze(*cmd.Snooze)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "show handler not configured"}
		}
		return handlers.Show(*cmd.Show)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
