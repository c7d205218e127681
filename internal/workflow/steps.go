package workflow

import (
	"context"

	"github.com/sirupsen/logrus"
)

const unsignedContractWarning = "You have not signed the lease contract yet."

// Transition describes a completed step change.
type Transition struct {
	From    Step
	To      Step
	Warning string
}

// StepController is the four-step state machine of the workflow. Backward
// moves are always allowed. Moving past the contract step without a signed
// contract is allowed too but carries a warning.
type StepController struct {
	state     *State
	records   *RecordManager
	contracts *ContractCoordinator
	recorder  Recorder
	logger    logrus.FieldLogger
}

func (c *StepController) Current() Step {
	return c.state.Step
}

func (c *StepController) Next() (Transition, error) {
	if c.state.Step >= StepPayment {
		return Transition{}, ErrInvalidStep
	}
	return c.GoTo(c.state.Step + 1)
}

func (c *StepController) Back() (Transition, error) {
	if c.state.Step <= StepOverview {
		return Transition{}, ErrInvalidStep
	}
	return c.GoTo(c.state.Step - 1)
}

// GoTo moves to any step. Entering the contract step, or leaving it
// backwards, discards the contract preview.
func (c *StepController) GoTo(to Step) (Transition, error) {
	if !to.Valid() {
		return Transition{}, ErrInvalidStep
	}
	if c.state.AlreadyApplied {
		return Transition{}, ErrAlreadyApplied
	}

	from := c.state.Step
	t := Transition{From: from, To: to}

	if from <= StepContract && to > StepContract && !c.state.ContractSigned {
		t.Warning = unsignedContractWarning
	}

	if to == StepContract || (from == StepContract && to < StepContract) {
		c.contracts.Invalidate()
	}

	c.state.Step = to
	if from != to {
		c.recorder.StepChanged(from, to)
	}

	c.logger.WithFields(logrus.Fields{
		"from": from.String(),
		"to":   to.String(),
	}).Debug("workflow step changed")

	return t, nil
}

// Resume restores the workflow to step and, when applicationID is set,
// loads that application and its documents.
func (c *StepController) Resume(ctx context.Context, step Step, applicationID string) error {
	if !step.Valid() {
		return ErrInvalidStep
	}

	if applicationID != "" {
		if _, _, err := c.records.Load(ctx, applicationID); err != nil {
			return err
		}
	}

	c.state.Step = step
	if step == StepContract {
		c.contracts.Invalidate()
	}

	c.logger.WithFields(logrus.Fields{
		"step":           step.String(),
		"application_id": applicationID,
	}).Info("workflow resumed")

	return nil
}
