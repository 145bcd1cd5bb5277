package ledger

import (
	"context"

	"pulse_ledger/internal/domain"
)

func (e *Engine) Pause(ctx context.Context, caller domain.Account) error {
	return e.write(ctx, "pause", caller, func(c *call) error {
		if c.gate.Owner != caller {
			return ErrUnauthorized
		}
		if c.gate.Paused {
			return ErrPaused
		}
		c.gate.Paused = true
		if err := c.tx.PutGate(c.ctx, c.gate); err != nil {
			return err
		}
		c.emit(domain.EventPaused, caller, 0, 0, nil)
		return nil
	})
}

func (e *Engine) Unpause(ctx context.Context, caller domain.Account) error {
	return e.write(ctx, "unpause", caller, func(c *call) error {
		if c.gate.Owner != caller {
			return ErrUnauthorized
		}
		if !c.gate.Paused {
			return ErrNotPaused
		}
		c.gate.Paused = false
		if err := c.tx.PutGate(c.ctx, c.gate); err != nil {
			return err
		}
		c.emit(domain.EventUnpaused, caller, 0, 0, nil)
		return nil
	})
}

// TransferOwnership is allowed while paused.
func (e *Engine) TransferOwnership(ctx context.Context, caller, newOwner domain.Account) error {
	return e.write(ctx, "transfer_ownership", caller, func(c *call) error {
		if c.gate.Owner != caller {
			return ErrUnauthorized
		}
		if newOwner.IsZero() {
			return ErrInvalidOwner
		}
		c.gate.Owner = newOwner
		if err := c.tx.PutGate(c.ctx, c.gate); err != nil {
			return err
		}
		c.emit(domain.EventOwnershipTransferred, newOwner, 0, 0, map[string]any{
			domain.DataPreviousOwner: string(caller),
		})
		return nil
	})
}
