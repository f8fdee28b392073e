// Package commands parses the palette's slash commands into typed commands
// and dispatches them to app-provided handlers.
package commands

import (
	"fmt"
	"strings"
	"time"
)

type Type string

const (
	TypeSchedule   Type = "schedule"
	TypeUnschedule Type = "unschedule"
	TypePlan       Type = "plan"
	TypeDrop       Type = "drop"
	TypeComplete   Type = "complete"
	TypePrioritize Type = "prioritize"
	TypeSnooze     Type = "snooze"
	TypeShow       Type = "show"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ScheduleArgs places a child inside a container at a relative offset:
//
//	/schedule <child> into <parent> at <offset>
type ScheduleArgs struct {
	ChildID  string
	ParentID string
	Offset   time.Duration
}

// UnscheduleArgs removes one placement by its relationship id:
//
//	/unschedule <parent> <relationship>
type UnscheduleArgs struct {
	ParentID       string
	RelationshipID string
}

// PlanArgs anchors an item on the base calendar:
//
//	/plan <item> at <RFC3339 time>
type PlanArgs struct {
	ItemID string
	Start  time.Time
}

// DropArgs removes a base-calendar entry:
//
//	/drop <entry>
type DropArgs struct {
	EntryID string
}

// CompleteArgs flips a checklist placement:
//
//	/complete <parent> <relationship>
type CompleteArgs struct {
	ParentID       string
	RelationshipID string
}

// PrioritizeArgs resolves the pending conflict in favor of one entry:
//
//	/prioritize <entry>
type PrioritizeArgs struct {
	EntryID string
}

// SnoozeArgs resolves the pending conflict by delaying the losers:
//
//	/snooze <delay>
type SnoozeArgs struct {
	Delay time.Duration
}

// ShowArgs switches the active view:
//
//	/show <execution|day|conflicts>
type ShowArgs struct {
	View string
}

type Command struct {
	Type       Type
	Raw        string
	Schedule   *ScheduleArgs
	Unschedule *UnscheduleArgs
	Plan       *PlanArgs
	Drop       *DropArgs
	Complete   *CompleteArgs
	Prioritize *PrioritizeArgs
	Snooze     *SnoozeArgs
	Show       *ShowArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeSchedule:
		return parseSchedule(input, args)
	case TypeUnschedule:
		return parseUnschedule(input, args)
	case TypePlan:
		return parsePlan(input, args)
	case TypeDrop:
		return parseDrop(input, args)
	case TypeComplete:
		return parseComplete(input, args)
	case TypePrioritize:
		return parsePrioritize(input, args)
	case TypeSnooze:
		return parseSnooze(input, args)
	case TypeShow:
		return parseShow(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseSchedule(raw string, args []string) (Command, error) {
	// <child> into <parent> at <offset>
	if len(args) != 5 || strings.ToLower(args[1]) != "into" || strings.ToLower(args[3]) != "at" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "usage: schedule <child> into <parent> at <offset>"}
	}
	offset, err := time.ParseDuration(args[4])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("bad offset %q: %v", args[4], err)}
	}
	if offset < 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "offset must not be negative"}
	}
	return Command{Type: TypeSchedule, Raw: raw, Schedule: &ScheduleArgs{
		ChildID: args[0], ParentID: args[2], Offset: offset,
	}}, nil
}

func parseUnschedule(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "usage: unschedule <parent> <relationship>"}
	}
	return Command{Type: TypeUnschedule, Raw: raw, Unschedule: &UnscheduleArgs{
		ParentID: args[0], RelationshipID: args[1],
	}}, nil
}

func parsePlan(raw string, args []string) (Command, error) {
	if len(args) != 3 || strings.ToLower(args[1]) != "at" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "usage: plan <item> at <RFC3339 time>"}
	}
	start, err := time.Parse(time.RFC3339, args[2])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("bad start time %q: %v", args[2], err)}
	}
	return Command{Type: TypePlan, Raw: raw, Plan: &PlanArgs{ItemID: args[0], Start: start}}, nil
}

func parseDrop(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "usage: drop <entry>"}
	}
	return Command{Type: TypeDrop, Raw: raw, Drop: &DropArgs{EntryID: args[0]}}, nil
}

func parseComplete(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "usage: complete <parent> <relationship>"}
	}
	return Command{Type: TypeComplete, Raw: raw, Complete: &CompleteArgs{
		ParentID: args[0], RelationshipID: args[1],
	}}, nil
}

func parsePrioritize(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "usage: prioritize <entry>"}
	}
	return Command{Type: TypePrioritize, Raw: raw, Prioritize: &PrioritizeArgs{EntryID: args[0]}}, nil
}

func parseSnooze(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "usage: snooze <delay>"}
	}
	delay, err := time.ParseDuration(args[0])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("bad delay %q: %v", args[0], err)}
	}
	if delay <= 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "delay must be positive"}
	}
	return Command{Type: TypeSnooze, Raw: raw, Snooze: &SnoozeArgs{Delay: delay}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "usage: show <execution|day|conflicts>"}
	}
	view := strings.ToLower(args[0])
	switch view {
	case "execution", "day", "conflicts":
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown view %q", view)}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{View: view}}, nil
}
