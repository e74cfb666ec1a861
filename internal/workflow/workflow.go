// Package workflow enforces the legal moves of a target through the deal
// pipeline and of a SPAC through its lifecycle.
package workflow

import (
	"errors"
	"fmt"

	"spacos/internal/models"
)

var (
	// ErrIllegalTransition is returned for a move the transition table forbids.
	ErrIllegalTransition = errors.New("illegal transition")
	// ErrNoChange is returned when the source and destination are equal.
	ErrNoChange = errors.New("state unchanged")
	// ErrTerminal is returned when the source state has no exits.
	ErrTerminal = errors.New("state is terminal")
)

// dealEdges lists the allowed destinations of each deal stage. Every
// non-terminal stage may advance exactly one step or drop to passed.
var dealEdges = map[models.DealStage][]models.DealStage{
	models.DealStageSourcing:         {models.DealStageInitialScreening, models.DealStagePassed},
	models.DealStageInitialScreening: {models.DealStageDeepEvaluation, models.DealStagePassed},
	models.DealStageDeepEvaluation:   {models.DealStageNegotiation, models.DealStagePassed},
	models.DealStageNegotiation:      {models.DealStageExecution, models.DealStagePassed},
	models.DealStageExecution:        {models.DealStageClosed, models.DealStagePassed},
	models.DealStageClosed:           nil,
	models.DealStagePassed:           nil,
}

func init() {
	for _, s := range models.AllDealStages() {
		if _, ok := dealEdges[s]; !ok {
			panic(fmt.Sprintf("workflow: no transition row for deal stage %q", s))
		}
	}
}

// NextStages returns the stages reachable from from in one move.
func NextStages(from models.DealStage) []models.DealStage {
	next := dealEdges[from]
	out := make([]models.DealStage, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether a target may move from one stage to another.
func CanTransition(from, to models.DealStage) bool {
	return Transition(from, to) == nil
}

// Transition validates a stage move and explains why it is refused.
func Transition(from, to models.DealStage) error {
	if !from.Valid() {
		return fmt.Errorf("deal stage %q: %w", from, models.ErrUnknownValue)
	}
	if !to.Valid() {
		return fmt.Errorf("deal stage %q: %w", to, models.ErrUnknownValue)
	}
	if from == to {
		return fmt.Errorf("%s: %w", from, ErrNoChange)
	}
	if from.IsTerminal() {
		return fmt.Errorf("%s -> %s: %w", from, to, ErrTerminal)
	}
	for _, allowed := range dealEdges[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%s -> %s: %w", from, to, ErrIllegalTransition)
}

// AdvancePhase validates a phase change. Phases only move forward, though
// they may skip ahead, and a SPAC whose status is terminal cannot move.
func AdvancePhase(status models.SPACStatus, from, to models.SPACPhase) error {
	if !from.Valid() {
		return fmt.Errorf("spac phase %q: %w", from, models.ErrUnknownValue)
	}
	if !to.Valid() {
		return fmt.Errorf("spac phase %q: %w", to, models.ErrUnknownValue)
	}
	if status.IsTerminal() {
		return fmt.Errorf("spac is %s: %w", status, ErrTerminal)
	}
	switch {
	case to.Index() == from.Index():
		return fmt.Errorf("%s: %w", from, ErrNoChange)
	case to.Index() < from.Index():
		return fmt.Errorf("%s -> %s: %w", from, to, ErrIllegalTransition)
	}
	return nil
}

var statusEdges = map[models.SPACStatus][]models.SPACStatus{
	models.SPACStatusDraft:      {models.SPACStatusActive},
	models.SPACStatusActive:     {models.SPACStatusCompleted, models.SPACStatusLiquidated},
	models.SPACStatusCompleted:  nil,
	models.SPACStatusLiquidated: nil,
}

// StatusTransition validates a SPAC status change:
// draft -> active -> completed | liquidated.
func StatusTransition(from, to models.SPACStatus) error {
	if !from.Valid() {
		return fmt.Errorf("spac status %q: %w", from, models.ErrUnknownValue)
	}
	if !to.Valid() {
		return fmt.Errorf("spac status %q: %w", to, models.ErrUnknownValue)
	}
	if from == to {
		return fmt.Errorf("%s: %w", from, ErrNoChange)
	}
	if from.IsTerminal() {
		return fmt.Errorf("%s -> %s: %w", from, to, ErrTerminal)
	}
	for _, allowed := range statusEdges[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%s -> %s: %w", from, to, ErrIllegalTransition)
}
