// Package recovery is the task the corrected program runs on the receiving console: it
// checks the cartridge, resets its clock and carries game time over into the save.
package recovery

import (
	"fmt"
	"log"

	"rtcfix/cart"
	"rtcfix/save"
)

type Step int

const (
	StepInit Step = iota
	StepCheckSave
	StepStartClockReset
	StepWaitClockReset
	StepSave
	StepWaitExit
	StepExit
)

var stepNames = [...]string{
	StepInit:            "Init",
	StepCheckSave:       "CheckSave",
	StepStartClockReset: "StartClockReset",
	StepWaitClockReset:  "WaitClockReset",
	StepSave:            "Save",
	StepWaitExit:        "WaitExit",
	StepExit:            "Exit",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepNames[s]
}

type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeUpdated
	OutcomeAlreadyUpdated
	OutcomeUnsupported
	OutcomeSaveError
	OutcomeClockError
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeUpdated:
		return "updated"
	case OutcomeAlreadyUpdated:
		return "already updated"
	case OutcomeUnsupported:
		return "unsupported cartridge"
	case OutcomeSaveError:
		return "save error"
	case OutcomeClockError:
		return "clock error"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Task advances one step per tick. It never retries; a failed run reports its outcome and
// waits for confirmation, and the caller decides whether to start over.
type Task struct {
	header    *cart.Header
	validator *cart.Validator
	manager   *save.Manager
	clock     Clock

	step Step

	Result     cart.Result
	Outcome    Outcome
	SaveStatus save.Status
	Err        error

	before save.Time
	// GameTime is the game clock carried over into the save.
	GameTime save.Time
}

func NewTask(header *cart.Header, manager *save.Manager, clock Clock) *Task {
	return &Task{
		header:    header,
		validator: cart.DefaultValidator(),
		manager:   manager,
		clock:     clock,
	}
}

// WithValidator replaces the version and title tables.
func (t *Task) WithValidator(v *cart.Validator) *Task {
	t.validator = v
	return t
}

func (t *Task) Step() Step { return t.step }

func (t *Task) Done() bool { return t.step == StepExit }

func (t *Task) finish(o Outcome) {
	t.Outcome = o
	t.step = StepWaitExit
	if t.Err != nil {
		log.Printf("recovery: %s: %v\n", o, t.Err)
	} else {
		log.Printf("recovery: %s\n", o)
	}
}

func (t *Task) Tick(confirm bool) Step {
	switch t.step {
	case StepInit:
		t.Result = t.validator.Validate(t.header)
		switch t.Result.Status {
		case cart.Invalid:
			t.finish(OutcomeUnsupported)
		case cart.AlreadyUpdated:
			t.finish(OutcomeAlreadyUpdated)
		default:
			log.Printf("recovery: %s needs update\n", t.Result.Variant)
			t.step = StepCheckSave
		}

	case StepCheckSave:
		t.SaveStatus = t.manager.Load()
		if t.SaveStatus != save.StatusOK {
			t.finish(OutcomeSaveError)
			break
		}
		t.step = StepStartClockReset

	case StepStartClockReset:
		var err error
		t.before, err = t.clock.Read()
		if err != nil {
			// a stopped clock is why we are here; count from zero
			log.Printf("recovery: read clock: %v\n", err)
			t.before = save.Time{}
		}
		if t.Err = t.clock.StartReset(); t.Err != nil {
			t.finish(OutcomeClockError)
			break
		}
		t.step = StepWaitClockReset

	case StepWaitClockReset:
		if t.clock.Busy() {
			break
		}
		after, err := t.clock.Read()
		if err != nil {
			t.Err = err
			t.finish(OutcomeClockError)
			break
		}

		offset, _ := t.manager.ClockStamps()
		t.GameTime = fromSeconds(seconds(t.before) + seconds(offset))
		t.manager.SetClockStamps(fromSeconds(seconds(t.GameTime)-seconds(after)), t.GameTime)
		t.step = StepSave

	case StepSave:
		t.manager.VarSet(save.VarDays, t.GameTime.Days)
		t.SaveStatus = t.manager.Save(save.ModeDataBlocks)
		if t.SaveStatus != save.StatusOK {
			t.Err = fmt.Errorf("damaged sectors %s", t.manager.DamagedSectors())
			t.finish(OutcomeSaveError)
			break
		}
		t.finish(OutcomeUpdated)

	case StepWaitExit:
		if confirm {
			t.step = StepExit
		}
	}
	return t.step
}
